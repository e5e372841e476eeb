package tabular

// Sheet names.
const (
	SheetInstructors  = "Instructors"
	SheetModules      = "Modules"
	SheetSoftware     = "Software"
	SheetSoftwareByOS = "SoftwareByOS"
	SheetChangeLog    = "ChangeLog"
)

// OS Source column values.
const (
	OSSourceExplicit  = "explicit"
	OSSourceInherited = "inherited"
)

// Fixed header rows.
var (
	InstructorHeader = []string{"ID", "Name", "Email", "Department", "Modules", "Last Review"}

	ModuleHeader = []string{"ID", "Code", "Name", "Description", "Year", "Semester", "Instructor", "OS Required"}

	SoftwareHeader = []string{
		"Module ID", "Software Name", "Version", "Purpose", "Category", "Critical",
		"OS Supported", "OS Source", "Notes", "Last Verified", "Verified By",
	}

	SoftwareByOSHeader = []string{"OS", "Module ID", "Software Name", "Version", "Critical"}

	ChangeLogHeader = []string{
		"Timestamp", "Module ID", "Software Name", "Instructor ID", "Action",
		"Actor", "Field", "Old Value", "New Value",
	}
)

// Column positions used by Reconstruct.
const (
	instColID = iota
	instColName
	instColEmail
	instColDepartment
	instColModules
	instColLastReview
)

const (
	modColID = iota
	modColCode
	modColName
	modColDescription
	modColYear
	modColSemester
	modColInstructor
	modColOSRequired
)

const (
	swColModuleID = iota
	swColName
	swColVersion
	swColPurpose
	swColCategory
	swColCritical
	swColOSSupported
	swColOSSource
	swColNotes
	swColLastVerified
	swColVerifiedBy
)

// Sheet is one named table with a header row.
type Sheet struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Cell returns the raw value at column col of row r, or "" when
// the row is shorter (spreadsheet readers drop trailing empty cells).
func (s *Sheet) Cell(r, col int) string {
	if r < 0 || r >= len(s.Rows) {
		return ""
	}
	row := s.Rows[r]
	if col >= len(row) {
		return ""
	}
	return row[col]
}

// Workbook is an ordered set of sheets.
type Workbook struct {
	Sheets []*Sheet `json:"sheets"`
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// RowCount returns the number of data rows in the named sheet whose first
// column is non-blank, or 0 if the sheet is missing.
func (w *Workbook) RowCount(name string) int {
	s, ok := w.Sheet(name)
	if !ok {
		return 0
	}
	n := 0
	for i := range s.Rows {
		if clean(s.Cell(i, 0)) != "" {
			n++
		}
	}
	return n
}

func (w *Workbook) add(name string, header []string) *Sheet {
	h := make([]string, len(header))
	copy(h, header)
	s := &Sheet{Name: name, Header: h, Rows: [][]string{}}
	w.Sheets = append(w.Sheets, s)
	return s
}

// SameSheets reports whether the named sheets hold the same header and rows
// in a and b, ignoring trailing empty cells. A sheet missing from either
// side is a difference.
func SameSheets(a, b *Workbook, names ...string) bool {
	for _, name := range names {
		sa, okA := a.Sheet(name)
		sb, okB := b.Sheet(name)
		if !okA || !okB {
			return false
		}
		if !sameRow(sa.Header, sb.Header) || len(sa.Rows) != len(sb.Rows) {
			return false
		}
		for i := range sa.Rows {
			if !sameRow(sa.Rows[i], sb.Rows[i]) {
				return false
			}
		}
	}
	return true
}

func sameRow(a, b []string) bool {
	a, b = trimTrailing(a), trimTrailing(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SourceSheets are the sheets Reconstruct reads.
var SourceSheets = []string{SheetInstructors, SheetModules, SheetSoftware}
