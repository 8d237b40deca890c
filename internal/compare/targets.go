package compare

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/respcheck/internal/failure"
)

// CompareTargetFilesText compares every file of the target directory as text.
// An empty targetDir is inferred from the run directory.
func (c *Comparator) CompareTargetFilesText(runDir, targetDir string) error {
	run, target, files, err := c.targetFiles(runDir, targetDir)
	if err != nil {
		return err
	}
	return c.CompareText(run, target, strings.Join(files, ","))
}

// CompareTargetFilesTwoFloatCols compares every file of the target directory
// as two float columns with relative tolerance.
func (c *Comparator) CompareTargetFilesTwoFloatCols(runDir, targetDir string, tol float64) error {
	run, target, files, err := c.targetFiles(runDir, targetDir)
	if err != nil {
		return err
	}
	return c.CompareTwoFloatCols(run, target, tol, strings.Join(files, ","))
}

// CompareTargetFilesTwoFloatColsAverage compares every file of the target
// directory as two float columns by average relative deviation.
func (c *Comparator) CompareTargetFilesTwoFloatColsAverage(runDir, targetDir string, tol float64) error {
	run, target, files, err := c.targetFiles(runDir, targetDir)
	if err != nil {
		return err
	}
	return c.CompareNFloatColsAverage(run, target, 2, tol, strings.Join(files, ","))
}

// CountAndCompareTargetFilesText compares every target file as text and then
// requires the run directory to hold no unexpected files.
func (c *Comparator) CountAndCompareTargetFilesText(runDir, targetDir string) error {
	run, target, files, err := c.targetFiles(runDir, targetDir)
	if err != nil {
		return err
	}
	if len(files) > 0 {
		if err := c.CompareText(run, target, strings.Join(files, ",")); err != nil {
			return err
		}
	}
	return c.CheckNumberOfFiles(run, len(files)+c.extraFiles)
}

// CountAndCompareTargetFilesTwoFloatCols is CountAndCompareTargetFilesNFloatCols
// with two columns.
func (c *Comparator) CountAndCompareTargetFilesTwoFloatCols(runDir, targetDir string, tol float64) error {
	return c.CountAndCompareTargetFilesNFloatCols(runDir, 2, targetDir, tol)
}

// CountAndCompareTargetFilesNFloatCols compares every target file as ncols
// float columns and then requires the run directory to hold exactly the
// target files plus the configured extra files.
func (c *Comparator) CountAndCompareTargetFilesNFloatCols(runDir string, ncols int, targetDir string, tol float64) error {
	run, target, files, err := c.targetFiles(runDir, targetDir)
	if err != nil {
		return err
	}
	if len(files) > 0 {
		if err := c.CompareNFloatCols(run, target, ncols, tol, strings.Join(files, ",")); err != nil {
			return err
		}
	}
	return c.CheckNumberOfFiles(run, len(files)+c.extraFiles)
}

// CheckNumberOfFiles requires the run directory to contain exactly n plain
// files. Symbolic links count by what they point to; directories never count.
func (c *Comparator) CheckNumberOfFiles(runDir string, n int) error {
	run, err := c.resolveRunDir(runDir)
	if err != nil {
		return err
	}
	found, err := countFiles(run)
	if err != nil {
		return err
	}
	if found != n {
		return failure.New(failure.FileCountMismatch, "Found %d files in %s, but expected %d", found, run, n).
			At(run, "", -1)
	}
	return nil
}

// InferTargetDir returns the path of runDir relative to the run root, which
// is also its path relative to the target root. Symbolic links are resolved
// on both sides first.
func (c *Comparator) InferTargetDir(runDir string) (string, error) {
	run, err := c.resolveRunDir(runDir)
	if err != nil {
		return "", err
	}
	return c.inferTargetDir(run)
}

func (c *Comparator) inferTargetDir(run string) (string, error) {
	realRun, err := filepath.EvalSymlinks(run)
	if err != nil {
		return "", failure.Wrap(failure.DirectoryNotFound, err, "Directory %s does not exist", run)
	}
	realRoot, err := filepath.EvalSymlinks(c.roots.Run)
	if err != nil {
		return "", failure.Wrap(failure.DirectoryNotFound, err, "Directory %s does not exist", c.roots.Run)
	}
	rel, err := filepath.Rel(realRoot, realRun)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", failure.New(failure.DirectoryNotFound,
			"cannot infer target directory: %s is not below the run root %s", run, c.roots.Run)
	}
	return rel, nil
}

// targetFiles resolves the directories and lists the plain files of the
// target directory in name order.
func (c *Comparator) targetFiles(runDir, targetDir string) (run, target string, files []string, err error) {
	run, err = c.resolveRunDir(runDir)
	if err != nil {
		return "", "", nil, err
	}
	target, err = c.resolveTargetDir(run, targetDir)
	if err != nil {
		return "", "", nil, err
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return "", "", nil, failure.Wrap(failure.DirectoryNotFound, err, "cannot list %s", target)
	}
	for _, entry := range entries {
		info, statErr := os.Stat(filepath.Join(target, entry.Name()))
		if statErr != nil || info.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	return run, target, files, nil
}

// resolveRunDir makes runDir absolute (relative paths are below the run
// root, "" is the process working directory) and checks that it exists.
func (c *Comparator) resolveRunDir(runDir string) (string, error) {
	if runDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", failure.Wrap(failure.DirectoryNotFound, err, "cannot determine working directory")
		}
		runDir = wd
	}
	if !filepath.IsAbs(runDir) {
		runDir = filepath.Join(c.roots.Run, runDir)
	}
	if err := requireDir(runDir); err != nil {
		return "", err
	}
	return runDir, nil
}

// resolveTargetDir places targetDir below the target root, inferring it from
// run when empty, and checks that it exists.
func (c *Comparator) resolveTargetDir(run, targetDir string) (string, error) {
	if targetDir == "" {
		inferred, err := c.inferTargetDir(run)
		if err != nil {
			return "", err
		}
		targetDir = inferred
	}
	target := targetDir
	if !filepath.IsAbs(target) {
		target = filepath.Join(c.roots.Target, targetDir)
	}
	if err := requireDir(target); err != nil {
		return "", err
	}
	return target, nil
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return failure.Wrap(failure.DirectoryNotFound, err, "Directory %s does not exist", dir).At(dir, "", -1)
	}
	if !info.IsDir() {
		return failure.New(failure.DirectoryNotFound, "%s is not a directory", dir).At(dir, "", -1)
	}
	return nil
}

// countFiles counts directory entries that stat as regular files.
func countFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, failure.Wrap(failure.DirectoryNotFound, err, "cannot list %s", dir)
	}
	found := 0
	for _, entry := range entries {
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			found++
		}
	}
	return found, nil
}
