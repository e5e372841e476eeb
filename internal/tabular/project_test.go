package tabular

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teachsync/internal/model"
)

// To regenerate: go test ./internal/tabular -update
func TestProject_Golden(t *testing.T) {
	wb := Project(loadFixture(t))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "projection", plain(wb))
}

func TestProject_SheetOrder(t *testing.T) {
	wb := Project(model.NewDocument())

	var names []string
	for _, s := range wb.Sheets {
		names = append(names, s.Name)
		assert.Empty(t, s.Rows, s.Name)
	}
	assert.Equal(t, []string{
		SheetInstructors, SheetModules, SheetSoftware, SheetSoftwareByOS, SheetChangeLog,
	}, names)
}

func TestProject_Deterministic(t *testing.T) {
	doc := loadFixture(t)
	assert.Equal(t, plain(Project(doc)), plain(Project(doc)))
}

func TestProject_DoesNotMutateHeaders(t *testing.T) {
	wb := Project(model.NewDocument())
	sheetOf(t, wb, SheetInstructors).Header[0] = "changed"
	assert.Equal(t, "ID", InstructorHeader[0])
}

func TestProject_InheritedAndExplicitOS(t *testing.T) {
	doc := model.NewDocument()
	doc.Modules.Put("mod_a", &model.Module{
		Name:       "A",
		OSRequired: []model.OSRequirement{{Name: "Linux"}},
		Software: []model.SoftwareRequirement{
			{Name: "inherits", Purpose: "p"},
			{Name: "none", Purpose: "p", OSSupported: model.OSList{}},
			{Name: "own", Purpose: "p", OSSupported: model.OSList{"Windows"}},
		},
	})

	sw := sheetOf(t, Project(doc), SheetSoftware)
	require.Len(t, sw.Rows, 3)
	assert.Equal(t, "Linux", sw.Rows[0][swColOSSupported])
	assert.Equal(t, OSSourceInherited, sw.Rows[0][swColOSSource])
	assert.Equal(t, "", sw.Rows[1][swColOSSupported])
	assert.Equal(t, OSSourceExplicit, sw.Rows[1][swColOSSource])
	assert.Equal(t, "Windows", sw.Rows[2][swColOSSupported])
	assert.Equal(t, OSSourceExplicit, sw.Rows[2][swColOSSource])
}

func TestProject_ByOSDedupesPerItem(t *testing.T) {
	doc := model.NewDocument()
	doc.Modules.Put("mod_a", &model.Module{
		Name: "A",
		Software: []model.SoftwareRequirement{
			{Name: "tool", Purpose: "p", OSSupported: model.OSList{"Linux", "Linux"}},
		},
	})

	byOS := sheetOf(t, Project(doc), SheetSoftwareByOS)
	assert.Len(t, byOS.Rows, 1)
}

func TestRender_ListsEverySheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Project(loadFixture(t))))

	out := buf.String()
	assert.Contains(t, out, "## Instructors (2 rows)")
	assert.Contains(t, out, "## SoftwareByOS (4 rows)")
	assert.Contains(t, out, "## ChangeLog (3 rows)")
	assert.Contains(t, out, "mod_cs101, mod_cs201")
}
