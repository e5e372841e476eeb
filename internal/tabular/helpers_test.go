package tabular

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
)

const fixturePath = "testdata/teaching_software.yml"

func loadFixture(t *testing.T) *model.Document {
	t.Helper()
	doc, err := document.Load(fixturePath)
	require.NoError(t, err)
	return doc
}

// plain renders a workbook with every cell quoted, one row per line.
func plain(wb *Workbook) []byte {
	var b strings.Builder
	for i, s := range wb.Sheets {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n", s.Name)
		writeQuoted(&b, s.Header)
		for _, row := range s.Rows {
			writeQuoted(&b, row)
		}
	}
	return []byte(b.String())
}

func writeQuoted(b *strings.Builder, row []string) {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = fmt.Sprintf("%q", c)
	}
	b.WriteString(strings.Join(cells, ","))
	b.WriteString("\n")
}

// assertSameEntities compares instructors and modules record by record.
func assertSameEntities(t *testing.T, want, got *model.Document) {
	t.Helper()
	require.Equal(t, want.Instructors.Keys(), got.Instructors.Keys())
	require.Equal(t, want.Modules.Keys(), got.Modules.Keys())
	for _, id := range want.Instructors.Keys() {
		w, _ := want.Instructors.Get(id)
		g, _ := got.Instructors.Get(id)
		assert.Equal(t, w, g, "instructor %s", id)
	}
	for _, id := range want.Modules.Keys() {
		w, _ := want.Modules.Get(id)
		g, _ := got.Modules.Get(id)
		assert.Equal(t, w, g, "module %s", id)
	}
}

func sheetOf(t *testing.T, wb *Workbook, name string) *Sheet {
	t.Helper()
	s, ok := wb.Sheet(name)
	require.True(t, ok, "sheet %s", name)
	return s
}
