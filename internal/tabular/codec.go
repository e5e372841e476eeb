package tabular

import (
	"path/filepath"
	"strings"

	"github.com/roach88/teachsync/internal/model"
)

// Codec reads and writes a workbook file.
type Codec interface {
	// Read loads the workbook at path. A missing file is CodeNotFound.
	Read(path string) (*Workbook, error)

	// Write replaces the workbook at path. The previous file stays intact
	// when writing fails.
	Write(path string, wb *Workbook) error
}

// OpenCodec picks the codec for path by extension: .xlsx for spreadsheets,
// .db, .sqlite or .sqlite3 for SQLite.
func OpenCodec(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return XLSXCodec{}, nil
	case ".db", ".sqlite", ".sqlite3":
		return SQLiteCodec{}, nil
	}
	return nil, model.Errorf(model.CodeValidationFailed, "open_codec",
		"unsupported workbook format %q (want .xlsx, .db, .sqlite or .sqlite3)", filepath.Ext(path))
}
