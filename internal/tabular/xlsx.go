package tabular

import (
	"errors"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/teachsync/internal/model"
)

// headerColors maps each sheet to its header fill and font color.
var headerColors = map[string][2]string{
	SheetInstructors:  {"4472C4", "FFFFFF"},
	SheetModules:      {"70AD47", "FFFFFF"},
	SheetSoftware:     {"FFC000", "000000"},
	SheetSoftwareByOS: {"5B9BD5", "FFFFFF"},
	SheetChangeLog:    {"A5A5A5", "FFFFFF"},
}

const (
	minColWidth = 10
	maxColWidth = 50
)

// XLSXCodec stores workbooks as Office Open XML spreadsheets. Every cell is
// written as text so values such as version "3.10" survive unchanged.
type XLSXCodec struct{}

// Read implements Codec.
func (XLSXCodec) Read(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.Wrap(model.CodeNotFound, "read_workbook", err, "workbook not found: %s", path)
	}
	if err != nil {
		return nil, model.Wrap(model.CodeMalformedDocument, "read_workbook", err, "open %s", path)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, model.Wrap(model.CodeMalformedDocument, "read_workbook", err, "read sheet %s", name)
		}
		s := &Sheet{Name: name, Rows: [][]string{}}
		if len(rows) > 0 {
			s.Header = rows[0]
			s.Rows = rows[1:]
		}
		wb.Sheets = append(wb.Sheets, s)
	}
	return wb, nil
}

// Write implements Codec.
func (XLSXCodec) Write(path string, wb *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range wb.Sheets {
		if err := writeSheet(f, i, s); err != nil {
			return model.Wrap(model.CodePersistence, "write_workbook", err, "render sheet %s", s.Name)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return model.Wrap(model.CodePersistence, "write_workbook", err, "render workbook")
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return model.Wrap(model.CodePersistence, "write_workbook", err, "write %s", path)
	}
	return nil
}

func writeSheet(f *excelize.File, index int, s *Sheet) error {
	if index == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(s.Name); err != nil {
		return err
	}

	header := toCells(s.Header)
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return err
	}
	for r, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := toCells(row)
		if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
			return err
		}
	}

	if len(s.Header) == 0 {
		return nil
	}
	if err := styleHeader(f, s); err != nil {
		return err
	}
	return sizeColumns(f, s)
}

func styleHeader(f *excelize.File, s *Sheet) error {
	colors, ok := headerColors[s.Name]
	if !ok {
		colors = headerColors[SheetChangeLog]
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colors[1]},
		Fill: excelize.Fill{Type: "pattern", Color: []string{colors[0]}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.Header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(s.Name, "A1", last, style)
}

// sizeColumns fits each column to its longest value within fixed bounds.
func sizeColumns(f *excelize.File, s *Sheet) error {
	for c := range s.Header {
		width := len(s.Header[c])
		for _, row := range s.Rows {
			if c < len(row) && len(row[c]) > width {
				width = len(row[c])
			}
		}
		width += 2
		width = max(minColWidth, min(width, maxColWidth))

		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, col, col, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

func toCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

// fileExists is shared by codecs that must not create a file on read.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
