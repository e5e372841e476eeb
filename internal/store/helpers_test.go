package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
	"github.com/roach88/teachsync/internal/testutil"
)

const fixturePath = "testdata/teaching_software.yml"

// scenarioDoc is the minimal initial state: one instructor without modules
// and one module without software.
const scenarioDoc = `instructors:
  prof_001:
    name: Ada
    email: a@x.edu
    department: CS
    modules: []
modules:
  mod_cs101:
    code: CS101
    name: Intro
    description: ""
    software: []
audit_log: []
`

type testEnv struct {
	store   *Store
	path    string
	dir     string
	metrics *Metrics
	clock   *testutil.DeterministicClock
}

// newTestEnv copies content into a temp dir and opens a store on it.
func newTestEnv(t *testing.T, content string, opts ...func(*Config)) *testEnv {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "teaching_software.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	env := &testEnv{
		path:    path,
		dir:     dir,
		metrics: NewMetrics("test"),
		clock:   testutil.NewDeterministicClock(),
	}
	cfg := Config{
		DocumentPath: path,
		WorkbookPath: filepath.Join(dir, "teaching_software.xlsx"),
		Actor:        "tester",
		Clock:        env.clock,
		IDs:          testutil.NewSequenceIDs("audit"),
		Metrics:      env.metrics,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s, err := Open(cfg)
	require.NoError(t, err)
	env.store = s
	return env
}

func newFixtureEnv(t *testing.T, opts ...func(*Config)) *testEnv {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	return newTestEnv(t, string(data), opts...)
}

func (e *testEnv) doc(t *testing.T) *model.Document {
	t.Helper()
	doc, err := document.Load(e.path)
	require.NoError(t, err)
	return doc
}

func (e *testEnv) bytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(e.path)
	require.NoError(t, err)
	return data
}

func (e *testEnv) instructor(t *testing.T, id string) *model.Instructor {
	t.Helper()
	inst, ok := e.doc(t).Instructors.Get(id)
	require.True(t, ok, "instructor %s", id)
	return inst
}

func (e *testEnv) module(t *testing.T, id string) *model.Module {
	t.Helper()
	m, ok := e.doc(t).Modules.Get(id)
	require.True(t, ok, "module %s", id)
	return m
}

func (e *testEnv) lastAudit(t *testing.T) model.AuditEntry {
	t.Helper()
	log := e.doc(t).AuditLog
	require.NotEmpty(t, log)
	return log[len(log)-1]
}

// requireOwnershipConsistent checks both ownership sides agree.
func requireOwnershipConsistent(t *testing.T, doc *model.Document) {
	t.Helper()
	for _, modID := range doc.Modules.Keys() {
		m, _ := doc.Modules.Get(modID)
		listed := 0
		doc.Instructors.Each(func(id string, inst *model.Instructor) {
			if inst.HasModule(modID) {
				listed++
				require.Equal(t, id, m.InstructorID, "module %s listed by %s", modID, id)
			}
		})
		if m.InstructorID == "" {
			require.Zero(t, listed, "unowned module %s is listed", modID)
		} else {
			require.Equal(t, 1, listed, "module %s owner %s", modID, m.InstructorID)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}

var ctx = context.Background()
