package store

import (
	"context"
	"strings"
	"time"

	"github.com/roach88/teachsync/internal/model"
)

// InstructorPatch lists the instructor fields to change. Nil fields are
// left as they are.
type InstructorPatch struct {
	Name       *string
	Email      *string
	Department *string
	LastReview *string

	// Modules replaces the instructor's module list. Ownership of every
	// listed module moves to the instructor; dropped modules lose their
	// owner.
	Modules *[]string
}

// AddInstructor creates an instructor. LastReview defaults to today. Every
// listed module must exist and becomes owned by the new instructor.
func (s *Store) AddInstructor(ctx context.Context, inst model.Instructor) error {
	const op = "add_instructor"

	inst.ID = strings.TrimSpace(inst.ID)
	inst.Name = strings.TrimSpace(inst.Name)
	inst.Email = strings.TrimSpace(inst.Email)
	inst.Department = strings.TrimSpace(inst.Department)
	inst.LastReview = strings.TrimSpace(inst.LastReview)
	inst.Modules = cleanList(inst.Modules)
	if err := s.checkInput(op, &inst); err != nil {
		return err
	}

	return s.mutate(ctx, op, func(doc *model.Document, now time.Time) (model.AuditEntry, error) {
		if doc.Instructors.Has(inst.ID) {
			return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op, "instructor %s already exists", inst.ID)
		}
		if other, taken := emailOwner(doc, inst.Email, ""); taken {
			return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op,
				"email %s already used by instructor %s", inst.Email, other)
		}
		if err := requireModules(op, doc, inst.Modules); err != nil {
			return model.AuditEntry{}, err
		}

		rec := inst.Clone()
		if rec.LastReview == "" {
			rec.LastReview = today(now)
		}
		doc.Instructors.Put(rec.ID, rec)
		for _, modID := range rec.Modules {
			assignOwner(doc, modID, rec.ID)
		}
		return model.AuditEntry{InstructorID: rec.ID, Action: model.ActionCreated}, nil
	})
}

// UpdateInstructor applies p to an existing instructor.
func (s *Store) UpdateInstructor(ctx context.Context, id string, p InstructorPatch) error {
	const op = "update_instructor"

	return s.mutate(ctx, op, func(doc *model.Document, _ time.Time) (model.AuditEntry, error) {
		inst, ok := doc.Instructors.Get(id)
		if !ok {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op, "instructor %s not found", id)
		}
		if p.Email != nil {
			if other, taken := emailOwner(doc, *p.Email, id); taken {
				return model.AuditEntry{}, model.Errorf(model.CodeDuplicate, op,
					"email %s already used by instructor %s", strings.TrimSpace(*p.Email), other)
			}
		}

		var d diff
		d.str("name", &inst.Name, p.Name)
		d.str("email", &inst.Email, p.Email)
		d.str("department", &inst.Department, p.Department)
		d.str("last_review", &inst.LastReview, p.LastReview)

		if p.Modules != nil {
			next := cleanList(*p.Modules)
			if err := requireModules(op, doc, next); err != nil {
				return model.AuditEntry{}, err
			}
			prev := inst.Modules
			for _, modID := range prev {
				if !contains(next, modID) {
					releaseFrom(doc, modID, id)
				}
			}
			inst.Modules = next
			for _, modID := range next {
				assignOwner(doc, modID, id)
			}
			d.list("modules", prev, next)
		}

		if err := s.checkInput(op, inst); err != nil {
			return model.AuditEntry{}, err
		}
		return model.AuditEntry{InstructorID: id, Action: model.ActionUpdated, Changes: d.changes}, nil
	})
}

// DeleteInstructor removes an instructor. Modules it owned become unowned.
func (s *Store) DeleteInstructor(ctx context.Context, id string) error {
	const op = "delete_instructor"

	return s.mutate(ctx, op, func(doc *model.Document, _ time.Time) (model.AuditEntry, error) {
		if !doc.Instructors.Has(id) {
			return model.AuditEntry{}, model.Errorf(model.CodeNotFound, op, "instructor %s not found", id)
		}
		doc.Modules.Each(func(_ string, m *model.Module) {
			if m.InstructorID == id {
				m.InstructorID = ""
			}
		})
		doc.Instructors.Delete(id)
		return model.AuditEntry{InstructorID: id, Action: model.ActionDeleted}, nil
	})
}

func contains(list []string, id string) bool {
	for _, it := range list {
		if it == id {
			return true
		}
	}
	return false
}
