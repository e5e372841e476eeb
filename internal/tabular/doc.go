// Package tabular projects a model.Document into a multi-sheet workbook and
// reconstructs a document from one.
//
// Sheets and their fixed column order (the order is part of the contract,
// Reconstruct parses by position):
//
//	Instructors   ID, Name, Email, Department, Modules, Last Review
//	Modules       ID, Code, Name, Description, Year, Semester, Instructor, OS Required
//	Software      Module ID, Software Name, Version, Purpose, Category, Critical,
//	              OS Supported, OS Source, Notes, Last Verified, Verified By
//	SoftwareByOS  OS, Module ID, Software Name, Version, Critical
//	ChangeLog     Timestamp, Module ID, Software Name, Instructor ID, Action,
//	              Actor, Field, Old Value, New Value
//
// SoftwareByOS and ChangeLog are derived, display-only sheets; Reconstruct
// ignores them.
//
// A software item without an explicit OS list is displayed with its
// module's OS names and "inherited" in the OS Source column. Reconstruct
// reads that marker back as "no explicit list", so a round trip never turns
// an inherited list into explicit data.
//
// Workbooks are stored through a Codec: XLSX (excelize) or SQLite.
package tabular
