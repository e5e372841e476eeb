package document

import (
	"fmt"

	"github.com/roach88/teachsync/internal/model"
)

// Validate checks structural completeness and referential integrity.
//
// Checks run in this order:
//  1. required top-level sections (instructors, modules)
//  2. per instructor: email, module list, referenced modules exist
//  3. per module: name, software list; per software: name, purpose
//
// Returns ok == true only when no violation was found.
func Validate(doc *model.Document) (bool, []model.Violation) {
	var vs []model.Violation
	add := func(path, format string, args ...any) {
		vs = append(vs, model.Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	for _, key := range []string{"instructors", "modules"} {
		present := doc.Instructors.Present()
		if key == "modules" {
			present = doc.Modules.Present()
		}
		if !present {
			add(key, "missing required key: %s", key)
		}
	}

	doc.Instructors.Each(func(id string, inst *model.Instructor) {
		path := "instructors." + id
		if inst.Email == "" {
			add(path+".email", "Instructor %s missing email", id)
		}
		if inst.Modules == nil {
			add(path+".modules", "Instructor %s missing modules list", id)
			return
		}
		for _, modID := range inst.Modules {
			if !doc.Modules.Has(modID) {
				add(path+".modules", "Instructor %s references non-existent module: %s", id, modID)
			}
		}
	})

	doc.Modules.Each(func(id string, mod *model.Module) {
		path := "modules." + id
		if mod.Name == "" {
			add(path+".name", "Module %s missing name", id)
		}
		if mod.Software == nil {
			add(path+".software", "Module %s missing software list", id)
			return
		}
		for idx, sw := range mod.Software {
			swPath := fmt.Sprintf("%s.software[%d]", path, idx)
			if sw.Name == "" {
				add(swPath+".name", "Module %s software #%d missing name", id, idx)
			}
			if sw.Purpose == "" {
				name := sw.Name
				if name == "" {
					name = "?"
				}
				add(swPath+".purpose", "Module %s software %s missing purpose", id, name)
			}
		}
	})

	return len(vs) == 0, vs
}

// MustBeValid returns a VALIDATION_FAILED error carrying every violation,
// or nil when the document is valid.
func MustBeValid(op string, doc *model.Document) error {
	ok, vs := Validate(doc)
	if ok {
		return nil
	}
	return &model.Error{
		Code:       model.CodeValidationFailed,
		Op:         op,
		Message:    vs[0].Message,
		Violations: vs,
	}
}
