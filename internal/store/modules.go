package store

import (
	"context"
	"strings"
	"time"

	"github.com/roach88/teachsync/internal/model"
)

// ModulePatch lists the module fields to change. Nil fields are left as
// they are.
type ModulePatch struct {
	Code        *string
	Name        *string
	Description *string
	Year        *int
	Semester    *string
	OSRequired  *[]model.OSRequirement

	// InstructorID reassigns ownership; "" leaves the module unowned.
	InstructorID *string
}

// AddModule creates a module. Software items get the same defaults as
// AddSoftware. A non-empty InstructorID must name an existing instructor,
// who becomes the owner.
func (s *Store) AddModule(ctx context.Context, m model.Module) error {
	const op = "add_module"

	m.ID = strings.TrimSpace(m.ID)
	m.Code = strings.TrimSpace(m.Code)
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	m.Semester = strings.TrimSpace(m.Semester)
	m.InstructorID = strings.TrimSpace(m.InstructorID)
	m.OSRequired = cleanOSRequirements(m.OSRequired)
	software := make([]model.SoftwareRequirement, len(m.Software))
	for i, sw := range m.Software {
		software[i] = normalizeSoftware(sw)
	}
	m.Software = software
	if err := s.checkInput(op, &m); err != nil {
		return err
	}

	return s.mutate(ctx, op, func(doc *model.Document, now time.Time) (model.AuditEntry, error) {
		if doc.Modules.Has(m.ID) {
			return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op, "module %s already exists", m.ID)
		}
		if other, taken := codeOwner(doc, m.Code, ""); taken {
			return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op,
				"code %s already used by module %s", m.Code, other)
		}
		if err := requireInstructor(op, doc, m.InstructorID); err != nil {
			return model.AuditEntry{}, err
		}

		rec := m.Clone()
		seen := map[string]bool{}
		for i := range rec.Software {
			sw := &rec.Software[i]
			if seen[sw.Name] {
				return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op,
					"software %s listed twice in module %s", sw.Name, m.ID)
			}
			seen[sw.Name] = true
			if sw.LastVerified == "" {
				sw.LastVerified = today(now)
			}
		}

		doc.Modules.Put(rec.ID, rec)
		if rec.InstructorID != "" {
			assignOwner(doc, rec.ID, rec.InstructorID)
		}
		return model.AuditEntry{ModuleID: rec.ID, InstructorID: rec.InstructorID, Action: model.ActionCreated}, nil
	})
}

// UpdateModule applies p to an existing module.
func (s *Store) UpdateModule(ctx context.Context, id string, p ModulePatch) error {
	const op = "update_module"

	return s.mutate(ctx, op, func(doc *model.Document, _ time.Time) (model.AuditEntry, error) {
		m, ok := doc.Modules.Get(id)
		if !ok {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op, "module %s not found", id)
		}
		if p.Code != nil {
			code := strings.TrimSpace(*p.Code)
			if other, taken := codeOwner(doc, code, id); taken {
				return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op,
					"code %s already used by module %s", code, other)
			}
		}

		var d diff
		d.str("code", &m.Code, p.Code)
		d.str("name", &m.Name, p.Name)
		d.str("description", &m.Description, p.Description)
		d.integer("year", &m.Year, p.Year)
		d.str("semester", &m.Semester, p.Semester)
		if p.OSRequired != nil {
			next := cleanOSRequirements(*p.OSRequired)
			d.osRequirements("os_required", m.OSRequired, next)
			m.OSRequired = next
		}

		owner := m.InstructorID
		if p.InstructorID != nil {
			next := strings.TrimSpace(*p.InstructorID)
			if err := requireInstructor(op, doc, next); err != nil {
				return model.AuditEntry{}, err
			}
			d.record("instructor_id", m.InstructorID, next)
			if next == "" {
				releaseOwner(doc, id)
			} else {
				assignOwner(doc, id, next)
			}
			owner = next
		}

		if err := s.checkInput(op, m); err != nil {
			return model.AuditEntry{}, err
		}
		return model.AuditEntry{
			ModuleID:     id,
			InstructorID: owner,
			Action:       model.ActionUpdated,
			Changes:      d.changes,
		}, nil
	})
}

// DeleteModule removes a module together with its software and every
// instructor reference to it.
func (s *Store) DeleteModule(ctx context.Context, id string) error {
	const op = "delete_module"

	return s.mutate(ctx, op, func(doc *model.Document, _ time.Time) (model.AuditEntry, error) {
		if !doc.Modules.Has(id) {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op, "module %s not found", id)
		}
		releaseOwner(doc, id)
		doc.Modules.Delete(id)
		return model.AuditEntry{ModuleID: id, Action: model.ActionDeleted}, nil
	})
}
