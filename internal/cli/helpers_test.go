package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/respcheck/internal/config"
)

// newTestWorkspace creates a workspace whose fixtures satisfy suiteYAML.
func newTestWorkspace(t *testing.T) (string, config.Roots) {
	t.Helper()
	ws := t.TempDir()
	roots := config.Resolve(ws, ws)
	writeTestFile(t, filepath.Join(roots.Data, "simple", "RESP"), "resp\n")
	writeTestFile(t, filepath.Join(roots.Data, "simple", "AMP"), "0.1 2.0\n")
	writeTestFile(t, filepath.Join(roots.Target, "response", "simple", "AMP"), "0.1 2.0000001\n")
	return ws, roots
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const passingSuite = `name: passing
cases:
  - name: identical
    steps:
      - keyword: prepare
        args: [response/simple, simple, "RESP,AMP"]
      - keyword: compare two float cols
        args: [response/simple, "", AMP]
`

const failingSuite = `name: failing
cases:
  - name: strict
    steps:
      - keyword: prepare
        args: [response/strict, simple, AMP]
      - keyword: compareText
        args: [response/simple, AMP]
`

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
