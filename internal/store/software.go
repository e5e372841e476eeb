package store

import (
	"context"
	"strings"
	"time"

	"github.com/roach88/teachsync/internal/model"
)

// DefaultVersion is used when software is added without a version.
const DefaultVersion = "Latest"

// SoftwarePatch lists the software fields to change. Nil fields are left as
// they are, except LastVerified, which is stamped with today when nil.
type SoftwarePatch struct {
	Name         *string
	Version      *string
	Purpose      *string
	Category     *string
	Critical     *bool
	Notes        *string
	LastVerified *string
	VerifiedBy   *string

	// OSSupported replaces the explicit OS list. A pointer to a nil list
	// returns the item to inheriting its module's OS list.
	OSSupported *model.OSList
}

func normalizeSoftware(sw model.SoftwareRequirement) model.SoftwareRequirement {
	sw.Name = strings.TrimSpace(sw.Name)
	sw.Version = strings.TrimSpace(sw.Version)
	sw.Purpose = strings.TrimSpace(sw.Purpose)
	sw.Category = strings.TrimSpace(sw.Category)
	sw.Notes = strings.TrimSpace(sw.Notes)
	sw.LastVerified = strings.TrimSpace(sw.LastVerified)
	sw.VerifiedBy = strings.TrimSpace(sw.VerifiedBy)
	sw.OSSupported = cleanOSList(sw.OSSupported)
	if sw.Version == "" {
		sw.Version = DefaultVersion
	}
	return sw
}

// AddSoftware appends sw to a module's software list. Version defaults to
// "Latest" and LastVerified to today.
func (s *Store) AddSoftware(ctx context.Context, moduleID string, sw model.SoftwareRequirement) error {
	const op = "add_software"

	sw = normalizeSoftware(sw)
	if err := s.checkInput(op, &sw); err != nil {
		return err
	}

	return s.mutate(ctx, op, func(doc *model.Document, now time.Time) (model.AuditEntry, error) {
		m, ok := doc.Modules.Get(moduleID)
		if !ok {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op, "module %s not found", moduleID)
		}
		if m.SoftwareIndex(sw.Name) >= 0 {
			return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op,
				"software %s already exists in module %s", sw.Name, moduleID)
		}

		rec := sw.Clone()
		if rec.LastVerified == "" {
			rec.LastVerified = today(now)
		}
		m.Software = append(m.Software, rec)
		return model.AuditEntry{
			ModuleID:     moduleID,
			SoftwareName: rec.Name,
			InstructorID: m.InstructorID,
			Action:       model.ActionCreated,
		}, nil
	})
}

// UpdateSoftware applies p to the named software of a module.
func (s *Store) UpdateSoftware(ctx context.Context, moduleID, name string, p SoftwarePatch) error {
	const op = "update_software"

	return s.mutate(ctx, op, func(doc *model.Document, now time.Time) (model.AuditEntry, error) {
		m, ok := doc.Modules.Get(moduleID)
		if !ok {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op, "module %s not found", moduleID)
		}
		idx := m.SoftwareIndex(name)
		if idx < 0 {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op,
				"software %s not found in module %s", name, moduleID)
		}
		if p.Name != nil {
			next := strings.TrimSpace(*p.Name)
			if other := m.SoftwareIndex(next); other >= 0 && other != idx {
				return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op,
					"software %s already exists in module %s", next, moduleID)
			}
		}

		sw := &m.Software[idx]
		var d diff
		d.str("name", &sw.Name, p.Name)
		d.str("version", &sw.Version, p.Version)
		d.str("purpose", &sw.Purpose, p.Purpose)
		d.str("category", &sw.Category, p.Category)
		d.boolean("critical", &sw.Critical, p.Critical)
		d.str("notes", &sw.Notes, p.Notes)
		d.str("verified_by", &sw.VerifiedBy, p.VerifiedBy)
		if p.OSSupported != nil {
			next := cleanOSList(*p.OSSupported)
			d.osList("os_supported", sw.OSSupported, next)
			sw.OSSupported = next
		}
		verified := p.LastVerified
		if verified == nil {
			stamp := today(now)
			verified = &stamp
		}
		d.str("last_verified", &sw.LastVerified, verified)

		if err := s.checkInput(op, sw); err != nil {
			return model.AuditEntry{}, err
		}
		return model.AuditEntry{
			ModuleID:     moduleID,
			SoftwareName: sw.Name,
			InstructorID: m.InstructorID,
			Action:       model.ActionUpdated,
			Changes:      d.changes,
		}, nil
	})
}

// DeleteSoftware removes the named software from a module.
func (s *Store) DeleteSoftware(ctx context.Context, moduleID, name string) error {
	const op = "delete_software"

	return s.mutate(ctx, op, func(doc *model.Document, _ time.Time) (model.AuditEntry, error) {
		m, ok := doc.Modules.Get(moduleID)
		if !ok {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op, "module %s not found", moduleID)
		}
		idx := m.SoftwareIndex(name)
		if idx < 0 {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op,
				"software %s not found in module %s", name, moduleID)
		}
		m.Software = append(m.Software[:idx], m.Software[idx+1:]...)
		return model.AuditEntry{
			ModuleID:     moduleID,
			SoftwareName: name,
			InstructorID: m.InstructorID,
			Action:       model.ActionDeleted,
		}, nil
	})
}
