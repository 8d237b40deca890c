package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/respcheck/internal/store"
)

// recordSuites runs the passing and failing suites into a fresh database.
func recordSuites(t *testing.T) string {
	t.Helper()
	ws, _ := newTestWorkspace(t)
	suites := t.TempDir()
	writeTestFile(t, filepath.Join(suites, "a_passing.yaml"), passingSuite)
	writeTestFile(t, filepath.Join(suites, "b_failing.yaml"), failingSuite)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text", Workspace: ws}), suites, "--db", dbPath)
	require.Error(t, err, "failing suite fails the command")
	return dbPath
}

func TestHistoryRequiresDB(t *testing.T) {
	_, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}

func TestHistoryEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestHistoryList(t *testing.T) {
	dbPath := recordSuites(t)

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS 1/1  passing")
	assert.Contains(t, out, "FAIL 0/1  failing")

	out, err = execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--suite", "failing")
	require.NoError(t, err)
	var resp struct {
		Data []store.RunRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "failing", resp.Data[0].Suite)
	assert.False(t, resp.Data[0].Pass)
}

func TestHistoryRun(t *testing.T) {
	dbPath := recordSuites(t)

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--suite", "failing")
	require.NoError(t, err)
	var list struct {
		Data []store.RunRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Data, 1)
	id := list.Data[0].ID

	out, err = execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Run: "+id)
	assert.Contains(t, out, "Status: FAIL (0/1 cases passed)")
	assert.Contains(t, out, "FAIL compareText [response/simple AMP]")
	assert.Contains(t, out, "ContentMismatch")
}

func TestHistoryRunNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	_, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found: nope")
}
