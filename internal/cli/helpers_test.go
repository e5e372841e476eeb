package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
)

type cliEnv struct {
	dir      string
	document string
	workbook string
}

// newCLIEnv copies the fixture into a temp dir.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "teaching_software.yml"))
	require.NoError(t, err)

	dir := t.TempDir()
	env := &cliEnv{
		dir:      dir,
		document: filepath.Join(dir, "teaching_software.yml"),
		workbook: filepath.Join(dir, "teaching_software.xlsx"),
	}
	require.NoError(t, os.WriteFile(env.document, data, 0o644))
	return env
}

// run executes the root command against env and returns stdout.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{
		"--document", e.document,
		"--workbook", e.workbook,
		"--actor", "cli-test",
		"--log-level", "disabled",
	}, args...))

	err := cmd.Execute()
	return out.String(), err
}

// runJSON executes with --format json and decodes the response.
func (e *cliEnv) runJSON(t *testing.T, args ...string) (CLIResponse, error) {
	t.Helper()
	out, err := e.run(t, append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

func (e *cliEnv) doc(t *testing.T) *model.Document {
	t.Helper()
	doc, err := document.Load(e.document)
	require.NoError(t, err)
	return doc
}

func (e *cliEnv) bytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(e.document)
	require.NoError(t, err)
	return data
}

// decodeData re-decodes a response payload into v.
func decodeData(t *testing.T, resp CLIResponse, v any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}
