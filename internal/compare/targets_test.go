package compare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/respcheck/internal/config"
	"github.com/roach88/respcheck/internal/failure"
)

func TestInferTargetDir(t *testing.T) {
	w := newWorkspace(t)
	run := w.run(t, filepath.Join("response", "simple"), nil)

	rel, err := w.cmp.InferTargetDir(run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("response", "simple"), rel)
}

func TestInferTargetDir_ThroughSymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	realRun := filepath.Join(base, "real-run")
	require.NoError(t, os.MkdirAll(filepath.Join(realRun, "case"), 0755))
	linkedRun := filepath.Join(base, "linked-run")
	require.NoError(t, os.Symlink(realRun, linkedRun))

	roots := config.Roots{Data: base, Target: base, Run: linkedRun}
	cmp := New(roots, config.DefaultSettings(), nil)

	rel, err := cmp.InferTargetDir(filepath.Join(realRun, "case"))
	require.NoError(t, err)
	assert.Equal(t, "case", rel)
}

func TestInferTargetDir_OutsideRunRoot(t *testing.T) {
	w := newWorkspace(t)
	outside := t.TempDir()

	_, err := w.cmp.InferTargetDir(outside)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.DirectoryNotFound))
}

func TestCompareTargetFilesText_InfersTarget(t *testing.T) {
	w := newWorkspace(t)
	files := map[string]string{"a.txt": "a\n", "b.txt": "b\n"}
	run := w.run(t, filepath.Join("suite", "case"), files)
	w.target(t, filepath.Join("suite", "case"), files)

	assert.NoError(t, w.cmp.CompareTargetFilesText(run, ""))
}

func TestCompareTargetFilesText_MissingRunFile(t *testing.T) {
	w := newWorkspace(t)
	run := w.run(t, "case", map[string]string{"a.txt": "a\n"})
	w.target(t, "case", map[string]string{"a.txt": "a\n", "b.txt": "b\n"})

	err := w.cmp.CompareTargetFilesText(run, "")
	assert.True(t, failure.Is(err, failure.MissingFile))
}

func TestCompareTargetFilesTwoFloatCols(t *testing.T) {
	w := newWorkspace(t)
	run := w.run(t, "case", map[string]string{"AMP.txt": "1.0 2.0\n", "PHASE.txt": "1.0 -90.0\n"})
	w.target(t, "case", map[string]string{"AMP.txt": "1.0 2.000001\n", "PHASE.txt": "1.0 -90.0\n"})

	assert.NoError(t, w.cmp.CompareTargetFilesTwoFloatCols(run, "", config.DefaultTolerance))

	err := w.cmp.CompareTargetFilesTwoFloatCols(run, "", 1e-8)
	assert.True(t, failure.Is(err, failure.ToleranceExceeded))
}

func TestCompareTargetFilesTwoFloatColsAverage(t *testing.T) {
	w := newWorkspace(t)
	run := w.run(t, "case", map[string]string{"AMP.txt": "1 1\n1 1\n1 1\n1 1\n"})
	w.target(t, "case", map[string]string{"AMP.txt": "1 1\n1 1\n1 1\n1 1.2\n"})

	// one sample of 0.2/1.2 over four lines
	assert.NoError(t, w.cmp.CompareTargetFilesTwoFloatColsAverage(run, "", 0.05))

	err := w.cmp.CompareTargetFilesTwoFloatColsAverage(run, "", 0.01)
	assert.True(t, failure.Is(err, failure.ToleranceExceeded))
}

func TestCompareTargetFiles_SkipsSubdirectories(t *testing.T) {
	w := newWorkspace(t)
	run := w.run(t, "case", map[string]string{"a.txt": "a\n"})
	target := w.target(t, "case", map[string]string{"a.txt": "a\n"})
	require.NoError(t, os.MkdirAll(filepath.Join(target, "nested"), 0755))

	assert.NoError(t, w.cmp.CompareTargetFilesText(run, ""))
}

func TestCountAndCompareTargetFilesTwoFloatCols_Scenario(t *testing.T) {
	w := newWorkspace(t)
	outputs := map[string]string{
		"AMP.IU.ANMO..BHZ":   "0.1 1.0\n",
		"PHASE.IU.ANMO..BHZ": "0.1 -45.0\n",
		"SPECTRA.IU.ANMO":    "0.1 3.5\n",
	}
	w.target(t, "case", outputs)

	runFiles := map[string]string{"RESP.IU.ANMO..BHZ": "fixture\n"}
	for name, content := range outputs {
		runFiles[name] = content
	}
	run := w.run(t, "case", runFiles)

	// 3 compared + 1 incidental
	require.NoError(t, w.cmp.CountAndCompareTargetFilesTwoFloatCols(run, "", config.DefaultTolerance))

	require.NoError(t, os.WriteFile(filepath.Join(run, "stray.log"), []byte("x\n"), 0644))
	err := w.cmp.CountAndCompareTargetFilesTwoFloatCols(run, "", config.DefaultTolerance)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.FileCountMismatch))
	assert.Contains(t, err.Error(), "Found 5 files in "+run+", but expected 4")
}

func TestCountAndCompareTargetFiles_EmptyTarget(t *testing.T) {
	w := newWorkspace(t)
	w.target(t, "case", nil)
	run := w.run(t, "case", map[string]string{"RESP": "fixture\n"})

	assert.NoError(t, w.cmp.CountAndCompareTargetFilesText(run, ""))
	assert.NoError(t, w.cmp.CountAndCompareTargetFilesNFloatCols(run, 3, "", 0))

	require.NoError(t, os.WriteFile(filepath.Join(run, "unexpected"), []byte("x\n"), 0644))
	err := w.cmp.CountAndCompareTargetFilesText(run, "")
	assert.True(t, failure.Is(err, failure.FileCountMismatch))
}

func TestCountAndCompareTargetFilesNFloatCols_CompareFailsFirst(t *testing.T) {
	w := newWorkspace(t)
	w.target(t, "case", map[string]string{"a.txt": "1 2 3\n"})
	run := w.run(t, "case", map[string]string{"a.txt": "1 2 4\n"})

	// the count is also wrong, but the comparison is reported
	err := w.cmp.CountAndCompareTargetFilesNFloatCols(run, 3, "", 1e-8)
	assert.True(t, failure.Is(err, failure.ToleranceExceeded))
}

func TestCountAndCompare_ExtraFilesSetting(t *testing.T) {
	settings := config.DefaultSettings()
	settings.ExtraFiles = 0
	w := newWorkspaceWith(t, settings)
	w.target(t, "case", map[string]string{"a.txt": "a\n"})
	run := w.run(t, "case", map[string]string{"a.txt": "a\n"})

	assert.NoError(t, w.cmp.CountAndCompareTargetFilesText(run, ""))
}

func TestCheckNumberOfFiles(t *testing.T) {
	w := newWorkspace(t)
	run := w.run(t, "case", map[string]string{"a": "1\n", "b": "2\n"})
	require.NoError(t, os.MkdirAll(filepath.Join(run, "subdir"), 0755))
	require.NoError(t, os.Symlink(filepath.Join(run, "a"), filepath.Join(run, "link-to-a")))
	require.NoError(t, os.Symlink(filepath.Join(run, "missing"), filepath.Join(run, "dangling")))

	assert.NoError(t, w.cmp.CheckNumberOfFiles(run, 3))

	err := w.cmp.CheckNumberOfFiles(run, 2)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.FileCountMismatch))
	assert.Contains(t, err.Error(), "Found 3 files in "+run+", but expected 2")
}

func TestCheckNumberOfFiles_MissingDir(t *testing.T) {
	w := newWorkspace(t)
	err := w.cmp.CheckNumberOfFiles(filepath.Join(w.roots.Run, "nope"), 0)
	assert.True(t, failure.Is(err, failure.DirectoryNotFound))
}
