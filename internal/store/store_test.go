package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
)

func TestOpen_RequiresDocumentPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidationFailed)
}

func TestOpen_Defaults(t *testing.T) {
	s, err := Open(Config{DocumentPath: "/data/teaching_software.yml"})
	require.NoError(t, err)
	assert.Equal(t, "/data", s.cfg.BackupDir)
	assert.Equal(t, DefaultActor, s.cfg.Actor)
	assert.Equal(t, DefaultLockTimeout, s.cfg.LockTimeout)
	assert.Equal(t, "/data/teaching_software.yml.lock", s.flock.Path())
}

func TestInit_CreatesEmptyDocumentOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yml")
	s, err := Open(Config{DocumentPath: path})
	require.NoError(t, err)

	created, err := s.Init(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	doc, err := document.Load(path)
	require.NoError(t, err)
	ok, violations := document.Validate(doc)
	assert.True(t, ok, "%v", violations)

	created, err = s.Init(ctx)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestMutation_WritesBothBackups(t *testing.T) {
	env := newFixtureEnv(t)
	before := env.bytes(t)

	require.NoError(t, env.store.AddSoftware(ctx, "mod_cs201", model.SoftwareRequirement{
		Name: "Git", Purpose: "Version control",
	}))

	rolling, archival := env.store.BackupPaths("20240902_083000")
	assert.Equal(t, filepath.Join(env.dir, "teaching_software.yml.backup"), rolling)
	assert.Equal(t, filepath.Join(env.dir, "teaching_software_20240902_083000.yml.backup"), archival)
	for _, path := range []string{rolling, archival} {
		data, err := os.ReadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, before, data, path)
	}
	assert.NotEqual(t, before, env.bytes(t))
}

func TestMutation_BackupDir(t *testing.T) {
	backups := filepath.Join(t.TempDir(), "backups")
	env := newFixtureEnv(t, func(c *Config) { c.BackupDir = backups })

	require.NoError(t, env.store.DeleteSoftware(ctx, "mod_cs101", "VSCode"))
	assert.FileExists(t, filepath.Join(backups, "teaching_software.yml.backup"))
	assert.NoFileExists(t, filepath.Join(env.dir, "teaching_software.yml.backup"))
}

func TestMutation_FailureLeavesDocumentUntouched(t *testing.T) {
	env := newFixtureEnv(t)
	before := env.bytes(t)

	err := env.store.AddInstructor(ctx, model.Instructor{
		ID: "prof_003", Name: "Copy", Email: "alice.martin@example.edu",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDuplicate)
	assert.Equal(t, before, env.bytes(t))
}

func TestMutation_PersistenceFailureKeepsPreviousDocument(t *testing.T) {
	env := newFixtureEnv(t)
	before := env.bytes(t)

	diskFull := errors.New("no space left on device")
	env.store.writeFile = func(path string, data []byte, perm os.FileMode, opts ...renameio.Option) error {
		if path == env.path {
			return diskFull
		}
		return renameio.WriteFile(path, data, perm, opts...)
	}

	err := env.store.DeleteModule(ctx, "mod_cs201")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, before, env.bytes(t))

	backup, readErr := os.ReadFile(filepath.Join(env.dir, "teaching_software.yml.backup"))
	require.NoError(t, readErr)
	assert.Equal(t, before, backup)

	assert.Equal(t, 1.0, promtest.ToFloat64(
		env.metrics.operations.WithLabelValues("delete_module", "persistence_failure")))
}

func TestMutation_MissingDocument(t *testing.T) {
	s, err := Open(Config{DocumentPath: filepath.Join(t.TempDir(), "missing.yml")})
	require.NoError(t, err)

	err = s.AddModule(ctx, model.Module{ID: "mod_x", Name: "X"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, "add_module", err.(*model.Error).Op)
}

func TestMutation_MalformedDocument(t *testing.T) {
	env := newTestEnv(t, "instructors: [unclosed\n")
	err := env.store.DeleteInstructor(ctx, "prof_001")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedDocument)
}

func TestMutation_PanicIsRecovered(t *testing.T) {
	env := newFixtureEnv(t)
	before := env.bytes(t)

	err := env.store.mutate(ctx, "explode", func(*model.Document, time.Time) (model.AuditEntry, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInternal)
	assert.Contains(t, err.Error(), "panic: boom")
	assert.Equal(t, before, env.bytes(t))

	// The writer lock was released.
	require.NoError(t, env.store.DeleteSoftware(ctx, "mod_cs101", "VSCode"))
}

func TestMutation_LockTimeout(t *testing.T) {
	env := newFixtureEnv(t, func(c *Config) { c.LockTimeout = 50 * time.Millisecond })

	other := flock.New(env.path + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	err = env.store.DeleteModule(ctx, "mod_cs201")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.Contains(t, err.Error(), "writer lock")
	assert.NotNil(t, env.module(t, "mod_cs201"))
}

func TestMutation_AuditEntry(t *testing.T) {
	env := newFixtureEnv(t)

	require.NoError(t, env.store.AddSoftware(ctx, "mod_cs201", model.SoftwareRequirement{
		Name: "Git", Purpose: "Version control",
	}))

	entry := env.lastAudit(t)
	assert.Equal(t, model.AuditEntry{
		ID:           "audit-0001",
		Timestamp:    "2024-09-02T08:30:01Z",
		ModuleID:     "mod_cs201",
		SoftwareName: "Git",
		InstructorID: "prof_001",
		Action:       model.ActionCreated,
		Actor:        "tester",
	}, entry)
}

func TestMutation_WithActor(t *testing.T) {
	env := newFixtureEnv(t)

	require.NoError(t, env.store.DeleteSoftware(WithActor(ctx, "bob"), "mod_cs101", "VSCode"))
	assert.Equal(t, "bob", env.lastAudit(t).Actor)

	require.NoError(t, env.store.DeleteSoftware(WithActor(ctx, ""), "mod_cs101", "Python"))
	assert.Equal(t, "tester", env.lastAudit(t).Actor)
}

func TestMutation_AuditLogIsAppendOnly(t *testing.T) {
	env := newFixtureEnv(t)

	require.NoError(t, env.store.DeleteSoftware(ctx, "mod_cs101", "VSCode"))
	require.NoError(t, env.store.DeleteModule(ctx, "mod_cs201"))

	log := env.doc(t).AuditLog
	require.Len(t, log, 2)
	assert.Equal(t, "audit-0001", log[0].ID)
	assert.Equal(t, "VSCode", log[0].SoftwareName)
	assert.Equal(t, "audit-0002", log[1].ID)
	assert.Equal(t, "mod_cs201", log[1].ModuleID)
}

func TestMutation_PreservesConfigSections(t *testing.T) {
	env := newFixtureEnv(t)
	require.NoError(t, env.store.DeleteModule(ctx, "mod_cs201"))

	sn, err := env.store.Reload(ctx)
	require.NoError(t, err)
	email, err := sn.EmailConfig()
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.edu", email["smtp_server"])
	report, err := sn.ReportConfig()
	require.NoError(t, err)
	assert.Equal(t, 180, report["review_frequency_days"])
}

func TestMutation_Metrics(t *testing.T) {
	env := newFixtureEnv(t)

	require.NoError(t, env.store.DeleteSoftware(ctx, "mod_cs101", "VSCode"))
	require.Error(t, env.store.DeleteSoftware(ctx, "mod_cs101", "VSCode"))

	assert.Equal(t, 1.0, promtest.ToFloat64(env.metrics.operations.WithLabelValues("delete_software", "ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(env.metrics.operations.WithLabelValues("delete_software", "not_found")))

	path := filepath.Join(t.TempDir(), "teachsync.prom")
	require.NoError(t, env.metrics.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `test_store_operations_total{op="delete_software",outcome="ok"} 1`)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.observe("op", nil, time.Second)
	m.observeImportIssues(3)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMutation_ConcurrentWritersSerialize(t *testing.T) {
	env := newTestEnv(t, scenarioDoc)

	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	errs := make(chan error, len(names))
	for _, name := range names {
		go func() {
			errs <- env.store.AddSoftware(context.Background(), "mod_cs101", model.SoftwareRequirement{
				Name: name, Purpose: "p",
			})
		}()
	}
	for range names {
		require.NoError(t, <-errs)
	}

	m := env.module(t, "mod_cs101")
	assert.Len(t, m.Software, len(names))
	assert.Len(t, env.doc(t).AuditLog, len(names))
}
