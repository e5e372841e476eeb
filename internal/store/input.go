package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/teachsync/internal/model"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their document names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkInput validates a record's struct tags.
func (s *Store) checkInput(op string, record any) error {
	err := s.validate.Struct(record)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return model.Wrap(model.CodeInternal, op, err, "validate input")
	}
	violations := make([]model.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, model.Violation{
			Path:    fe.Namespace(),
			Message: describeFieldError(fe),
		})
	}
	return &model.Error{
		Code:       model.CodeValidationFailed,
		Op:         op,
		Message:    "invalid input",
		Violations: violations,
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s %q is not a valid email address", fe.Field(), fe.Value())
	case "datetime":
		return fmt.Sprintf("%s %q is not a date (YYYY-MM-DD)", fe.Field(), fe.Value())
	case "excludesall":
		return fmt.Sprintf("%s %q must not contain any of %q", fe.Field(), fe.Value(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
}

// normalizeEmail folds case after NFC normalization so visually identical
// addresses collide.
func normalizeEmail(email string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(email)))
}

// emailOwner returns the instructor other than except already using email.
func emailOwner(doc *model.Document, email, except string) (string, bool) {
	want := normalizeEmail(email)
	if want == "" {
		return "", false
	}
	for _, id := range doc.Instructors.Keys() {
		if id == except {
			continue
		}
		inst, _ := doc.Instructors.Get(id)
		if normalizeEmail(inst.Email) == want {
			return id, true
		}
	}
	return "", false
}

// codeOwner returns the module other than except already using code.
func codeOwner(doc *model.Document, code, except string) (string, bool) {
	if code == "" {
		return "", false
	}
	for _, id := range doc.Modules.Keys() {
		if id == except {
			continue
		}
		m, _ := doc.Modules.Get(id)
		if strings.TrimSpace(m.Code) == code {
			return id, true
		}
	}
	return "", false
}

// requireModules fails when any id is not a module of doc.
func requireModules(op string, doc *model.Document, ids []string) error {
	for _, id := range ids {
		if !doc.Modules.Has(id) {
			return model.Errorf(model.CodeReferentialIntegrity, op, "module %s does not exist", id)
		}
	}
	return nil
}

func requireInstructor(op string, doc *model.Document, id string) error {
	if id != "" && !doc.Instructors.Has(id) {
		return model.Errorf(model.CodeReferentialIntegrity, op, "instructor %s does not exist", id)
	}
	return nil
}

// cleanList trims items, drops blanks and duplicates. Never returns nil.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func cleanOSList(l model.OSList) model.OSList {
	if l == nil {
		return nil
	}
	return model.OSList(cleanList(l))
}

func cleanOSRequirements(reqs []model.OSRequirement) []model.OSRequirement {
	if reqs == nil {
		return nil
	}
	out := make([]model.OSRequirement, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, model.OSRequirement{
			Name: strings.TrimSpace(r.Name),
			Note: strings.TrimSpace(r.Note),
		})
	}
	return out
}
