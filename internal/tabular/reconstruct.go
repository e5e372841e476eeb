package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/teachsync/internal/model"
)

// RowIssue is a non-fatal problem with one workbook row.
type RowIssue struct {
	Sheet string `json:"sheet"`

	// Row is the 1-based spreadsheet row number; the header is row 1.
	Row     int        `json:"row"`
	Key     string     `json:"key,omitempty"`
	Code    model.Code `json:"code"`
	Message string     `json:"message"`
}

// String renders "Sheet row N: message".
func (r RowIssue) String() string {
	return fmt.Sprintf("%s row %d: %s", r.Sheet, r.Row, r.Message)
}

// Reconstruct rebuilds the instructors and modules of a document from the
// Instructors, Modules and Software sheets. Derived sheets are ignored and
// the returned document carries an empty audit log.
//
// Row problems are collected as issues rather than failing the whole
// reconstruction. A missing source sheet or a header that does not match the
// fixed column order is a MalformedDocument error.
func Reconstruct(wb *Workbook) (*model.Document, []RowIssue, error) {
	sheets := map[string]*Sheet{}
	for _, spec := range []struct {
		name   string
		header []string
	}{
		{SheetInstructors, InstructorHeader},
		{SheetModules, ModuleHeader},
		{SheetSoftware, SoftwareHeader},
	} {
		s, ok := wb.Sheet(spec.name)
		if !ok {
			return nil, nil, model.Errorf(model.CodeMalformedDocument, "reconstruct",
				"workbook has no %s sheet", spec.name)
		}
		if err := checkHeader(s, spec.header); err != nil {
			return nil, nil, err
		}
		sheets[spec.name] = s
	}

	r := &reconstructor{doc: model.NewDocument()}
	r.instructors(sheets[SheetInstructors])
	r.modules(sheets[SheetModules])
	r.software(sheets[SheetSoftware])
	return r.doc, r.issues, nil
}

func checkHeader(s *Sheet, want []string) error {
	for i, col := range want {
		got := ""
		if i < len(s.Header) {
			got = clean(s.Header[i])
		}
		if got != col {
			return model.Errorf(model.CodeMalformedDocument, "reconstruct",
				"%s sheet column %d: expected %q, found %q", s.Name, i+1, col, got)
		}
	}
	return nil
}

type reconstructor struct {
	doc    *model.Document
	issues []RowIssue
}

func (r *reconstructor) skip(s *Sheet, i int, key, format string, args ...any) {
	r.issues = append(r.issues, RowIssue{
		Sheet:   s.Name,
		Row:     i + 2,
		Key:     key,
		Code:    model.CodeImportRowSkipped,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *reconstructor) instructors(s *Sheet) {
	for i := range s.Rows {
		id := clean(s.Cell(i, instColID))
		if id == "" {
			continue
		}
		if r.doc.Instructors.Has(id) {
			r.skip(s, i, id, "duplicate instructor id %s", id)
			continue
		}
		r.doc.Instructors.Put(id, &model.Instructor{
			Name:       clean(s.Cell(i, instColName)),
			Email:      clean(s.Cell(i, instColEmail)),
			Department: clean(s.Cell(i, instColDepartment)),
			Modules:    dedupe(splitList(s.Cell(i, instColModules))),
			LastReview: clean(s.Cell(i, instColLastReview)),
		})
	}
}

func (r *reconstructor) modules(s *Sheet) {
	for i := range s.Rows {
		id := clean(s.Cell(i, modColID))
		if id == "" {
			continue
		}
		if r.doc.Modules.Has(id) {
			r.skip(s, i, id, "duplicate module id %s", id)
			continue
		}
		m := &model.Module{
			Code:         clean(s.Cell(i, modColCode)),
			Name:         clean(s.Cell(i, modColName)),
			Description:  clean(s.Cell(i, modColDescription)),
			Semester:     clean(s.Cell(i, modColSemester)),
			InstructorID: clean(s.Cell(i, modColInstructor)),
			OSRequired:   splitOS(s.Cell(i, modColOSRequired)),
			Software:     []model.SoftwareRequirement{},
		}
		if raw := clean(s.Cell(i, modColYear)); raw != "" {
			year, err := strconv.Atoi(raw)
			if err != nil {
				r.issues = append(r.issues, RowIssue{
					Sheet:   s.Name,
					Row:     i + 2,
					Key:     id,
					Code:    model.CodeImportRowSkipped,
					Message: fmt.Sprintf("module %s: year %q is not a number, left unset", id, raw),
				})
			}
			m.Year = year
		}
		r.doc.Modules.Put(id, m)
	}
}

func (r *reconstructor) software(s *Sheet) {
	for i := range s.Rows {
		moduleID := clean(s.Cell(i, swColModuleID))
		name := clean(s.Cell(i, swColName))
		if moduleID == "" || name == "" {
			continue
		}
		key := moduleID + "/" + name
		m, ok := r.doc.Modules.Get(moduleID)
		if !ok {
			r.skip(s, i, key, "software %s references unknown module %s", name, moduleID)
			continue
		}
		if m.SoftwareIndex(name) >= 0 {
			r.skip(s, i, key, "duplicate software %s in module %s", name, moduleID)
			continue
		}
		m.Software = append(m.Software, model.SoftwareRequirement{
			Name:         name,
			Version:      clean(s.Cell(i, swColVersion)),
			Purpose:      clean(s.Cell(i, swColPurpose)),
			Category:     clean(s.Cell(i, swColCategory)),
			Critical:     parseBool(s.Cell(i, swColCritical)),
			OSSupported:  readOSSupported(s.Cell(i, swColOSSupported), s.Cell(i, swColOSSource)),
			Notes:        clean(s.Cell(i, swColNotes)),
			LastVerified: clean(s.Cell(i, swColLastVerified)),
			VerifiedBy:   clean(s.Cell(i, swColVerifiedBy)),
		})
	}
}

// readOSSupported returns nil (inherit) for an inherited row or a row with
// both the list and the source blank, and an explicit list otherwise.
func readOSSupported(list, source string) model.OSList {
	source = strings.ToLower(clean(source))
	if source == OSSourceInherited {
		return nil
	}
	names := splitList(list)
	if source == "" && len(names) == 0 {
		return nil
	}
	return model.OSList(names)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
