package tabular

import (
	"sort"

	"github.com/roach88/teachsync/internal/model"
)

// updateAllFields marks a ChangeLog row that does not describe a single field.
const updateAllFields = "*"

// Project renders doc as the five-sheet workbook. The result depends only on
// doc, so projecting the same document twice yields identical workbooks.
func Project(doc *model.Document) *Workbook {
	wb := &Workbook{}
	projectInstructors(wb.add(SheetInstructors, InstructorHeader), doc)
	projectModules(wb.add(SheetModules, ModuleHeader), doc)
	projectSoftware(wb.add(SheetSoftware, SoftwareHeader), doc)
	projectSoftwareByOS(wb.add(SheetSoftwareByOS, SoftwareByOSHeader), doc)
	projectChangeLog(wb.add(SheetChangeLog, ChangeLogHeader), doc)
	return wb
}

func projectInstructors(s *Sheet, doc *model.Document) {
	doc.Instructors.Each(func(id string, inst *model.Instructor) {
		s.Rows = append(s.Rows, []string{
			id,
			inst.Name,
			inst.Email,
			inst.Department,
			joinList(inst.Modules),
			inst.LastReview,
		})
	})
}

func projectModules(s *Sheet, doc *model.Document) {
	doc.Modules.Each(func(id string, m *model.Module) {
		s.Rows = append(s.Rows, []string{
			id,
			m.Code,
			m.Name,
			m.Description,
			formatYear(m.Year),
			m.Semester,
			m.InstructorID,
			joinOS(m.OSRequired),
		})
	})
}

func projectSoftware(s *Sheet, doc *model.Document) {
	doc.Modules.Each(func(id string, m *model.Module) {
		for i := range m.Software {
			sw := &m.Software[i]
			source := OSSourceExplicit
			if sw.OSSupported == nil {
				source = OSSourceInherited
			}
			s.Rows = append(s.Rows, []string{
				id,
				sw.Name,
				sw.Version,
				sw.Purpose,
				sw.Category,
				formatBool(sw.Critical),
				joinList(m.EffectiveOS(sw)),
				source,
				sw.Notes,
				sw.LastVerified,
				sw.VerifiedBy,
			})
		}
	})
}

func projectSoftwareByOS(s *Sheet, doc *model.Document) {
	byOS := map[string][][]string{}
	doc.Modules.Each(func(id string, m *model.Module) {
		for i := range m.Software {
			sw := &m.Software[i]
			seen := map[string]bool{}
			for _, osName := range m.EffectiveOS(sw) {
				if osName == "" || seen[osName] {
					continue
				}
				seen[osName] = true
				byOS[osName] = append(byOS[osName], []string{
					osName, id, sw.Name, sw.Version, formatBool(sw.Critical),
				})
			}
		}
	})

	names := make([]string, 0, len(byOS))
	for name := range byOS {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Rows = append(s.Rows, byOS[name]...)
	}
}

func projectChangeLog(s *Sheet, doc *model.Document) {
	for _, e := range doc.AuditLog {
		base := []string{e.Timestamp, e.ModuleID, e.SoftwareName, e.InstructorID, e.Action, e.Actor}
		if e.Action == model.ActionUpdated && len(e.Changes) > 0 {
			for _, c := range e.Changes {
				s.Rows = append(s.Rows, append(cloneRow(base), c.Field, c.Old, c.New))
			}
			continue
		}
		s.Rows = append(s.Rows, append(cloneRow(base), updateAllFields, "", ""))
	}
}

func cloneRow(row []string) []string {
	out := make([]string, len(row), len(row)+3)
	copy(out, row)
	return out
}
