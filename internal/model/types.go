package model

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Audit actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Document is the in-memory form of the persisted configuration.
type Document struct {
	Instructors Collection[Instructor] `yaml:"instructors" json:"instructors"`
	Modules     Collection[Module]     `yaml:"modules" json:"modules"`
	AuditLog    []AuditEntry           `yaml:"audit_log" json:"audit_log"`

	// Consumed read-only by notification collaborators; preserved verbatim.
	EmailConfig  *yaml.Node `yaml:"email_config,omitempty" json:"-"`
	ReportConfig *yaml.Node `yaml:"report_config,omitempty" json:"-"`
}

// UnmarshalYAML decodes the document and keeps the pass-through sections as
// the raw value nodes found under their keys.
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	type plain Document
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	p.EmailConfig, p.ReportConfig = nil, nil
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if val.Kind == 0 || val.ShortTag() == "!!null" {
			continue
		}
		switch key.Value {
		case "email_config":
			p.EmailConfig = val
		case "report_config":
			p.ReportConfig = val
		}
	}
	*d = Document(p)
	return nil
}

// NewDocument returns an empty document with both collections present.
func NewDocument() *Document {
	return &Document{
		Instructors: *NewCollection[Instructor](),
		Modules:     *NewCollection[Module](),
		AuditLog:    []AuditEntry{},
	}
}

// Instructor is a teaching staff member owning zero or more modules.
type Instructor struct {
	ID         string   `yaml:"-" json:"id" validate:"required"`
	Name       string   `yaml:"name" json:"name"`
	Email      string   `yaml:"email" json:"email" validate:"required,email"`
	Department string   `yaml:"department" json:"department"`
	Modules    []string `yaml:"modules" json:"modules" validate:"dive,required,excludesall=0x2C"`
	LastReview string   `yaml:"last_review,omitempty" json:"last_review,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// SetKey implements Keyed.
func (i *Instructor) SetKey(id string) { i.ID = id }

// HasModule reports whether moduleID is in the instructor's list.
func (i *Instructor) HasModule(moduleID string) bool {
	for _, m := range i.Modules {
		if m == moduleID {
			return true
		}
	}
	return false
}

// Module is a taught course unit.
type Module struct {
	ID           string                `yaml:"-" json:"id" validate:"required,excludesall=0x2C"`
	Code         string                `yaml:"code,omitempty" json:"code,omitempty"`
	Name         string                `yaml:"name" json:"name" validate:"required"`
	Description  string                `yaml:"description" json:"description"`
	Year         int                   `yaml:"year,omitempty" json:"year,omitempty" validate:"gte=0"`
	Semester     string                `yaml:"semester,omitempty" json:"semester,omitempty"`
	OSRequired   []OSRequirement       `yaml:"os_required,omitempty" json:"os_required,omitempty" validate:"dive"`
	InstructorID string                `yaml:"instructor_id,omitempty" json:"instructor_id,omitempty"`
	Software     []SoftwareRequirement `yaml:"software" json:"software" validate:"dive"`
}

// SetKey implements Keyed.
func (m *Module) SetKey(id string) { m.ID = id }

// OSNames returns the names of the module's required operating systems.
func (m *Module) OSNames() []string {
	names := make([]string, 0, len(m.OSRequired))
	for _, req := range m.OSRequired {
		names = append(names, req.Name)
	}
	return names
}

// SoftwareIndex returns the position of the named software, or -1.
func (m *Module) SoftwareIndex(name string) int {
	for i := range m.Software {
		if m.Software[i].Name == name {
			return i
		}
	}
	return -1
}

// EffectiveOS returns the OS names sw supports, falling back to the
// module's required OS list when sw declares none.
func (m *Module) EffectiveOS(sw *SoftwareRequirement) []string {
	if sw.OSSupported != nil {
		return []string(sw.OSSupported)
	}
	return m.OSNames()
}

// OSRequirement names an operating system a module needs.
type OSRequirement struct {
	Name string `yaml:"name" json:"name" validate:"required,excludesall=()0x2C"`
	Note string `yaml:"note,omitempty" json:"note,omitempty" validate:"excludesall=()"`
}

// String renders "name (note)" or just "name".
func (o OSRequirement) String() string {
	if strings.TrimSpace(o.Note) == "" {
		return o.Name
	}
	return o.Name + " (" + o.Note + ")"
}

// SoftwareRequirement is one piece of software a module depends on.
type SoftwareRequirement struct {
	Name         string `yaml:"name" json:"name" validate:"required"`
	Version      string `yaml:"version,omitempty" json:"version,omitempty"`
	Purpose      string `yaml:"purpose" json:"purpose" validate:"required"`
	Category     string `yaml:"category,omitempty" json:"category,omitempty"`
	Critical     bool   `yaml:"critical" json:"critical"`
	OSSupported  OSList `yaml:"os_supported,omitempty" json:"os_supported,omitzero" validate:"dive,required,excludesall=0x2C"`
	Notes        string `yaml:"notes,omitempty" json:"notes,omitempty"`
	LastVerified string `yaml:"last_verified,omitempty" json:"last_verified,omitempty" validate:"omitempty,datetime=2006-01-02"`
	VerifiedBy   string `yaml:"verified_by,omitempty" json:"verified_by,omitempty"`
}

// OSList is a list of OS names that keeps nil (inherit) distinct from empty
// (explicitly none) through YAML and JSON encoding.
type OSList []string

// IsZero reports whether the list is unset. Used by omitempty/omitzero.
func (l OSList) IsZero() bool {
	return l == nil
}

// AuditEntry records one mutation.
type AuditEntry struct {
	ID           string        `yaml:"id,omitempty" json:"id,omitempty"`
	Timestamp    string        `yaml:"timestamp" json:"timestamp"`
	ModuleID     string        `yaml:"module_id,omitempty" json:"module_id,omitempty"`
	SoftwareName string        `yaml:"software_name,omitempty" json:"software_name,omitempty"`
	InstructorID string        `yaml:"instructor_id,omitempty" json:"instructor_id,omitempty"`
	Action       string        `yaml:"action" json:"action"`
	Actor        string        `yaml:"actor" json:"actor"`
	Changes      []FieldChange `yaml:"changes,omitempty" json:"changes,omitempty"`
}

// FieldChange is an (old, new) pair for one field of an update.
type FieldChange struct {
	Field string `yaml:"field" json:"field"`
	Old   string `yaml:"old" json:"old"`
	New   string `yaml:"new" json:"new"`
}

// ModuleOwner returns the instructor whose module list contains moduleID.
func (d *Document) ModuleOwner(moduleID string) (string, bool) {
	for _, id := range d.Instructors.Keys() {
		inst, _ := d.Instructors.Get(id)
		if inst.HasModule(moduleID) {
			return id, true
		}
	}
	return "", false
}

// SoftwareCount returns the total number of software rows across modules.
func (d *Document) SoftwareCount() int {
	n := 0
	d.Modules.Each(func(_ string, m *Module) {
		n += len(m.Software)
	})
	return n
}

// ConfigSection decodes a pass-through section into a generic map.
// A missing section yields an empty map.
func ConfigSection(node *yaml.Node) (map[string]any, error) {
	out := map[string]any{}
	if node == nil || node.Kind == 0 {
		return out, nil
	}
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
