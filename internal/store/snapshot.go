package store

import (
	"context"
	"time"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
)

// Snapshot is an immutable view of the document as loaded at one instant.
// Accessors return copies; callers may modify them freely.
type Snapshot struct {
	doc      *model.Document
	loadedAt time.Time
}

// Reload reads the document from disk into a fresh snapshot.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.Wrap(model.CodeInternal, "reload", err, "context done")
	}
	_, doc, err := s.load("reload")
	if err != nil {
		return nil, err
	}
	return &Snapshot{doc: doc, loadedAt: time.Now()}, nil
}

// LoadedAt returns when the snapshot was read.
func (sn *Snapshot) LoadedAt() time.Time {
	return sn.loadedAt
}

// Document returns a deep copy of the whole document.
func (sn *Snapshot) Document() *model.Document {
	return sn.doc.Clone()
}

// ListInstructors returns all instructors in document order.
func (sn *Snapshot) ListInstructors() []model.Instructor {
	out := make([]model.Instructor, 0, sn.doc.Instructors.Len())
	sn.doc.Instructors.Each(func(_ string, inst *model.Instructor) {
		out = append(out, *inst.Clone())
	})
	return out
}

// ListModules returns all modules in document order.
func (sn *Snapshot) ListModules() []model.Module {
	out := make([]model.Module, 0, sn.doc.Modules.Len())
	sn.doc.Modules.Each(func(_ string, m *model.Module) {
		out = append(out, *m.Clone())
	})
	return out
}

// GetInstructor returns one instructor.
func (sn *Snapshot) GetInstructor(id string) (model.Instructor, error) {
	inst, ok := sn.doc.Instructors.Get(id)
	if !ok {
		return model.Instructor{}, model.Errorf(model.CodeNotFound, "get_instructor", "instructor %s not found", id)
	}
	return *inst.Clone(), nil
}

// GetModule returns one module.
func (sn *Snapshot) GetModule(id string) (model.Module, error) {
	m, ok := sn.doc.Modules.Get(id)
	if !ok {
		return model.Module{}, model.Errorf(model.CodeNotFound, "get_module", "module %s not found", id)
	}
	return *m.Clone(), nil
}

// GetInstructorModules returns the module ids in the instructor's list.
func (sn *Snapshot) GetInstructorModules(id string) ([]string, error) {
	inst, err := sn.GetInstructor(id)
	if err != nil {
		return nil, err
	}
	if inst.Modules == nil {
		return []string{}, nil
	}
	return inst.Modules, nil
}

// GetInstructorModuleDetails returns the instructor's modules as records,
// skipping ids that do not resolve.
func (sn *Snapshot) GetInstructorModuleDetails(id string) ([]model.Module, error) {
	ids, err := sn.GetInstructorModules(id)
	if err != nil {
		return nil, err
	}
	out := make([]model.Module, 0, len(ids))
	for _, modID := range ids {
		if m, ok := sn.doc.Modules.Get(modID); ok {
			out = append(out, *m.Clone())
		}
	}
	return out, nil
}

// GetModuleSoftware returns the module's software list.
func (sn *Snapshot) GetModuleSoftware(id string) ([]model.SoftwareRequirement, error) {
	m, err := sn.GetModule(id)
	if err != nil {
		return nil, err
	}
	if m.Software == nil {
		return []model.SoftwareRequirement{}, nil
	}
	return m.Software, nil
}

// EmailConfig returns the pass-through email_config section.
func (sn *Snapshot) EmailConfig() (map[string]any, error) {
	cfg, err := model.ConfigSection(sn.doc.EmailConfig)
	if err != nil {
		return nil, model.Wrap(model.CodeMalformedDocument, "email_config", err, "decode email_config")
	}
	return cfg, nil
}

// ReportConfig returns the pass-through report_config section.
func (sn *Snapshot) ReportConfig() (map[string]any, error) {
	cfg, err := model.ConfigSection(sn.doc.ReportConfig)
	if err != nil {
		return nil, model.Wrap(model.CodeMalformedDocument, "report_config", err, "decode report_config")
	}
	return cfg, nil
}

// Validate runs the structural validator over the snapshot.
func (sn *Snapshot) Validate() (bool, []model.Violation) {
	return document.Validate(sn.doc)
}

// AuditLog returns the audit entries, oldest first.
func (sn *Snapshot) AuditLog() []model.AuditEntry {
	out := make([]model.AuditEntry, len(sn.doc.AuditLog))
	for i := range sn.doc.AuditLog {
		out[i] = sn.doc.AuditLog[i].Clone()
	}
	return out
}

// ListInstructors reloads and lists instructors.
func (s *Store) ListInstructors(ctx context.Context) ([]model.Instructor, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return sn.ListInstructors(), nil
}

// ListModules reloads and lists modules.
func (s *Store) ListModules(ctx context.Context) ([]model.Module, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return sn.ListModules(), nil
}

// GetInstructor reloads and returns one instructor.
func (s *Store) GetInstructor(ctx context.Context, id string) (model.Instructor, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return model.Instructor{}, err
	}
	return sn.GetInstructor(id)
}

// GetModule reloads and returns one module.
func (s *Store) GetModule(ctx context.Context, id string) (model.Module, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return model.Module{}, err
	}
	return sn.GetModule(id)
}

// GetInstructorModules reloads and returns an instructor's module ids.
func (s *Store) GetInstructorModules(ctx context.Context, id string) ([]string, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return sn.GetInstructorModules(id)
}

// GetInstructorModuleDetails reloads and returns an instructor's modules.
func (s *Store) GetInstructorModuleDetails(ctx context.Context, id string) ([]model.Module, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return sn.GetInstructorModuleDetails(id)
}

// GetModuleSoftware reloads and returns a module's software.
func (s *Store) GetModuleSoftware(ctx context.Context, id string) ([]model.SoftwareRequirement, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return sn.GetModuleSoftware(id)
}

// EmailConfig reloads and returns the email_config section.
func (s *Store) EmailConfig(ctx context.Context) (map[string]any, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return sn.EmailConfig()
}

// ReportConfig reloads and returns the report_config section.
func (s *Store) ReportConfig(ctx context.Context) (map[string]any, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return sn.ReportConfig()
}

// ValidateDocument reloads and validates. Load failures are returned as the
// error; structural problems as violations.
func (s *Store) ValidateDocument(ctx context.Context) (bool, []model.Violation, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return false, nil, err
	}
	ok, violations := sn.Validate()
	return ok, violations, nil
}

// AuditLog reloads and returns the audit entries.
func (s *Store) AuditLog(ctx context.Context) ([]model.AuditEntry, error) {
	sn, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return sn.AuditLog(), nil
}
