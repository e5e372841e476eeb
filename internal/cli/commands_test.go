package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teachsync/internal/model"
	"github.com/roach88/teachsync/internal/store"
)

func TestInit(t *testing.T) {
	env := newCLIEnv(t)
	env.document = filepath.Join(env.dir, "fresh.yml")

	out, err := env.run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created")

	doc := env.doc(t)
	assert.Equal(t, 0, doc.Instructors.Len())
	assert.True(t, doc.Modules.Present())

	resp, err := env.runJSON(t, "init")
	require.NoError(t, err)
	var res InitResult
	decodeData(t, resp, &res)
	assert.False(t, res.Created)
}

func TestListInstructors(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "list", "instructors")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "alice.martin@example.edu")
	assert.Contains(t, out, "mod_cs101, mod_cs201")

	resp, err := env.runJSON(t, "list", "instructors")
	require.NoError(t, err)
	var list []model.Instructor
	decodeData(t, resp, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "prof_001", list[0].ID)
	assert.Equal(t, "prof_002", list[1].ID)
}

func TestListModules(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON(t, "list", "modules")
	require.NoError(t, err)
	var list []model.Module
	decodeData(t, resp, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "CS101", list[0].Code)
	assert.Len(t, list[0].Software, 2)
}

func TestShowInstructor(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "show", "instructor", "prof_001")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice Martin <alice.martin@example.edu>")
	assert.Contains(t, out, "Data Structures")

	resp, err := env.runJSON(t, "show", "instructor", "prof_001")
	require.NoError(t, err)
	var detail InstructorDetail
	decodeData(t, resp, &detail)
	require.Len(t, detail.ModuleDetails, 2)
	assert.Equal(t, "mod_cs101", detail.ModuleDetails[0].ID)
}

func TestShowModule_MarksInheritedOS(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "show", "module", "mod_cs101")
	require.NoError(t, err)
	assert.Contains(t, out, "CS101 Introduction to Programming")
	assert.Contains(t, out, "Windows (10 or later), macOS")
	assert.Contains(t, out, "Windows, macOS (inherited)", "Python follows the module")
}

func TestShowUnknown(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON(t, "show", "module", "mod_missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestInstructorAdd(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "instructor", "add", "prof_003",
		"--name", "Chloe Petit", "--email", "chloe@example.edu", "--department", "Physics")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added instructor prof_003")

	doc := env.doc(t)
	inst, ok := doc.Instructors.Get("prof_003")
	require.True(t, ok)
	assert.Equal(t, "Chloe Petit", inst.Name)
	assert.Equal(t, []string{}, inst.Modules)
	assert.NotEmpty(t, inst.LastReview)

	last := doc.AuditLog[len(doc.AuditLog)-1]
	assert.Equal(t, model.ActionCreated, last.Action)
	assert.Equal(t, "prof_003", last.InstructorID)
	assert.Equal(t, "cli-test", last.Actor)
}

func TestInstructorAdd_DuplicateEmailLeavesDocument(t *testing.T) {
	env := newCLIEnv(t)
	before := env.bytes(t)

	resp, err := env.runJSON(t, "instructor", "add", "prof_003",
		"--name", "Clone", "--email", "Alice.Martin@example.edu")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "DUPLICATE_CONSTRAINT", resp.Error.Code)
	assert.Equal(t, "add_instructor", resp.Error.Op)
	assert.Equal(t, before, env.bytes(t))
}

func TestInstructorAdd_InvalidEmail(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "instructor", "add", "prof_003", "--email", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [VALIDATION_FAILED]")
	assert.Contains(t, out, "not a valid email address")
}

func TestInstructorUpdate_OnlyChangedFields(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "instructor", "update", "prof_002", "--department", "Statistics", "--modules", "mod_cs201")
	require.NoError(t, err)

	doc := env.doc(t)
	bob, _ := doc.Instructors.Get("prof_002")
	assert.Equal(t, "Statistics", bob.Department)
	assert.Equal(t, "Bob Durand", bob.Name, "unset flags leave fields alone")
	assert.Equal(t, []string{"mod_cs201"}, bob.Modules)

	alice, _ := doc.Instructors.Get("prof_001")
	assert.Equal(t, []string{"mod_cs101"}, alice.Modules, "ownership moved")
	m, _ := doc.Modules.Get("mod_cs201")
	assert.Equal(t, "prof_002", m.InstructorID)
}

func TestInstructorUpdate_ClearModules(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "instructor", "update", "prof_001", "--modules=")
	require.NoError(t, err)

	doc := env.doc(t)
	alice, _ := doc.Instructors.Get("prof_001")
	assert.Empty(t, alice.Modules)
	m, _ := doc.Modules.Get("mod_cs101")
	assert.Empty(t, m.InstructorID)
}

func TestInstructorDelete(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "instructor", "delete", "prof_001")
	require.NoError(t, err)

	doc := env.doc(t)
	assert.False(t, doc.Instructors.Has("prof_001"))
	m, _ := doc.Modules.Get("mod_cs101")
	assert.Empty(t, m.InstructorID)
}

func TestModuleAdd(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "module", "add", "mod_ma101",
		"--code", "MA101", "--name", "Calculus", "--year", "1",
		"--os", "Windows 11 (lab PCs, 16GB), Linux", "--instructor", "prof_002")
	require.NoError(t, err)

	doc := env.doc(t)
	m, ok := doc.Modules.Get("mod_ma101")
	require.True(t, ok)
	assert.Equal(t, 1, m.Year)
	assert.Equal(t, []model.OSRequirement{{Name: "Windows 11", Note: "lab PCs, 16GB"}, {Name: "Linux"}}, m.OSRequired)
	assert.Equal(t, "prof_002", m.InstructorID)
	assert.NotNil(t, m.Software)

	bob, _ := doc.Instructors.Get("prof_002")
	assert.Equal(t, []string{"mod_ma101"}, bob.Modules)
}

func TestModuleAdd_UnknownInstructor(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON(t, "module", "add", "mod_ma101", "--name", "Calculus", "--instructor", "prof_999")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "REFERENTIAL_INTEGRITY", resp.Error.Code)
}

func TestModuleUpdate_Reassign(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "module", "update", "mod_cs101", "--instructor", "prof_002", "--semester", "S2")
	require.NoError(t, err)

	doc := env.doc(t)
	m, _ := doc.Modules.Get("mod_cs101")
	assert.Equal(t, "prof_002", m.InstructorID)
	assert.Equal(t, "S2", m.Semester)
	assert.Equal(t, "Introduction to Programming", m.Name)

	alice, _ := doc.Instructors.Get("prof_001")
	assert.Equal(t, []string{"mod_cs201"}, alice.Modules)
	bob, _ := doc.Instructors.Get("prof_002")
	assert.Equal(t, []string{"mod_cs101"}, bob.Modules)
}

func TestModuleDelete_Cascades(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "module", "delete", "mod_cs101")
	require.NoError(t, err)

	doc := env.doc(t)
	assert.False(t, doc.Modules.Has("mod_cs101"))
	alice, _ := doc.Instructors.Get("prof_001")
	assert.Equal(t, []string{"mod_cs201"}, alice.Modules)
}

func TestSoftwareAdd(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "software", "add", "mod_cs201", "VSCode", "--purpose", "IDE", "--critical")
	require.NoError(t, err)

	doc := env.doc(t)
	m, _ := doc.Modules.Get("mod_cs201")
	require.Len(t, m.Software, 1)
	sw := m.Software[0]
	assert.Equal(t, store.DefaultVersion, sw.Version)
	assert.True(t, sw.Critical)
	assert.Nil(t, sw.OSSupported, "no --os means inherit")
	assert.NotEmpty(t, sw.LastVerified)

	last := doc.AuditLog[len(doc.AuditLog)-1]
	assert.Equal(t, "mod_cs201", last.ModuleID)
	assert.Equal(t, "VSCode", last.SoftwareName)
}

func TestSoftwareAdd_Duplicate(t *testing.T) {
	env := newCLIEnv(t)
	before := env.bytes(t)

	resp, err := env.runJSON(t, "software", "add", "mod_cs101", "VSCode", "--purpose", "IDE")
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_CONSTRAINT", resp.Error.Code)
	assert.Equal(t, before, env.bytes(t))
}

func TestSoftwareUpdate_OS(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "software", "update", "mod_cs101", "Python", "--os", "Linux")
	require.NoError(t, err)
	m, _ := env.doc(t).Modules.Get("mod_cs101")
	assert.Equal(t, model.OSList{"Linux"}, m.Software[0].OSSupported)

	_, err = env.run(t, "software", "update", "mod_cs101", "VSCode", "--inherit-os")
	require.NoError(t, err)
	m, _ = env.doc(t).Modules.Get("mod_cs101")
	assert.Nil(t, m.Software[1].OSSupported)

	_, err = env.run(t, "software", "update", "mod_cs101", "VSCode", "--inherit-os", "--os", "Linux")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSoftwareUpdate_RenameAndDelete(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "software", "update", "mod_cs101", "VSCode", "--rename", "VS Code", "--last-verified", "2024-05-01")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Updated software VS Code in module mod_cs101")

	m, _ := env.doc(t).Modules.Get("mod_cs101")
	assert.Equal(t, "VS Code", m.Software[1].Name)
	assert.Equal(t, "2024-05-01", m.Software[1].LastVerified)

	_, err = env.run(t, "software", "delete", "mod_cs101", "VS Code")
	require.NoError(t, err)
	m, _ = env.doc(t).Modules.Get("mod_cs101")
	require.Len(t, m.Software, 1)
	assert.Equal(t, "Python", m.Software[0].Name)
}

func TestExportImportStatus(t *testing.T) {
	for _, ext := range []string{".xlsx", ".db"} {
		t.Run(ext, func(t *testing.T) {
			env := newCLIEnv(t)
			env.workbook = filepath.Join(env.dir, "mirror"+ext)

			_, err := env.run(t, "status")
			require.Error(t, err, "not exported yet")
			assert.Equal(t, ExitFailure, GetExitCode(err))

			out, err := env.run(t, "export")
			require.NoError(t, err)
			assert.Contains(t, out, "✓ Exported 2 instructors, 2 modules, 2 software")

			out, err = env.run(t, "status")
			require.NoError(t, err)
			assert.Contains(t, out, "✓ In sync")

			resp, err := env.runJSON(t, "import")
			require.NoError(t, err)
			var res store.ImportResult
			decodeData(t, resp, &res)
			assert.Equal(t, store.Counts{Instructors: 2, Modules: 2, Software: 2}, res.Counts)
			assert.Empty(t, res.Issues)

			doc := env.doc(t)
			alice, _ := doc.Instructors.Get("prof_001")
			assert.Equal(t, []string{"mod_cs101", "mod_cs201"}, alice.Modules)
			m, _ := doc.Modules.Get("mod_cs101")
			assert.Equal(t, "prof_001", m.InstructorID)
			assert.Nil(t, m.Software[0].OSSupported)
			assert.Equal(t, model.OSList{"Windows", "Linux"}, m.Software[1].OSSupported)

			_, err = env.run(t, "module", "delete", "mod_cs201")
			require.NoError(t, err)
			out, err = env.run(t, "status")
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "✗ Out of sync")
		})
	}
}

func TestExportPreview(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "export", "--preview")
	require.NoError(t, err)
	assert.Contains(t, out, "## Instructors (2 rows)")
	assert.Contains(t, out, "## SoftwareByOS (")
	assert.NoFileExists(t, env.workbook)
}

func TestImport_UnsupportedWorkbook(t *testing.T) {
	env := newCLIEnv(t)
	env.workbook = filepath.Join(env.dir, "mirror.csv")

	resp, err := env.runJSON(t, "import")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
}

func TestAudit(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "instructor", "update", "prof_002", "--department", "Statistics")
	require.NoError(t, err)
	_, err = env.run(t, "module", "update", "mod_cs201", "--semester", "S4")
	require.NoError(t, err)

	resp, err := env.runJSON(t, "audit")
	require.NoError(t, err)
	var entries []model.AuditEntry
	decodeData(t, resp, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "prof_002", entries[0].InstructorID)
	assert.Equal(t, []model.FieldChange{{Field: "department", Old: "Mathematics", New: "Statistics"}}, entries[0].Changes)

	resp, err = env.runJSON(t, "audit", "--module", "mod_cs201")
	require.NoError(t, err)
	decodeData(t, resp, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "mod_cs201", entries[0].ModuleID)

	resp, err = env.runJSON(t, "audit", "-n", "1")
	require.NoError(t, err)
	decodeData(t, resp, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "mod_cs201", entries[0].ModuleID)

	out, err := env.run(t, "audit", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "cli-test")
	assert.Contains(t, out, `"Mathematics" -> "Statistics"`)
}

func TestMetricsFile(t *testing.T) {
	env := newCLIEnv(t)
	metricsPath := filepath.Join(env.dir, "teachsync.prom")

	_, err := env.run(t, "--metrics-file", metricsPath, "instructor", "delete", "prof_002")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `teachsync_store_operations_total{op="delete_instructor",outcome="ok"} 1`)
}

func TestConfigFile(t *testing.T) {
	env := newCLIEnv(t)
	cfgPath := filepath.Join(env.dir, "teachsync.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("document: "+env.document+"\nactor: from-config\n"), 0o644))

	cmd := NewRootCommand()
	cmd.SetOut(&bytesDiscard{})
	cmd.SetErr(&bytesDiscard{})
	cmd.SetArgs([]string{"--config", cfgPath, "--log-level", "disabled", "instructor", "delete", "prof_002"})
	require.NoError(t, cmd.Execute())

	doc := env.doc(t)
	assert.Equal(t, "from-config", doc.AuditLog[len(doc.AuditLog)-1].Actor)
}

func TestWatch_StopsWithContext(t *testing.T) {
	env := newCLIEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cmd := NewRootCommand()
	cmd.SetOut(&bytesDiscard{})
	cmd.SetErr(&bytesDiscard{})
	cmd.SetArgs([]string{"--document", env.document, "--log-level", "disabled", "watch"})
	require.NoError(t, cmd.ExecuteContext(ctx))
}

type bytesDiscard struct{}

func (*bytesDiscard) Write(p []byte) (int, error) { return len(p), nil }
