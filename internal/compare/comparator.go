// Package compare checks the files a tool wrote into a run directory against
// the reference files of the mirrored target directory.
//
// Four line strategies are available: exact text, per-value relative
// tolerance, per-value absolute tolerance and average relative deviation
// over the whole file. All of them share the same walk: run-side lines drive
// the iteration, one target line is read per run line, and the target may
// not have lines left over at the end.
//
// Comparisons fail fast. The first failing line aborts the file and the
// remaining files of the list are not looked at.
package compare

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/respcheck/internal/config"
	"github.com/roach88/respcheck/internal/failure"
	"github.com/roach88/respcheck/internal/fixture"
)

// Comparator compares run directories with target directories.
type Comparator struct {
	roots      config.Roots
	extraFiles int
	allColumns bool
	logger     *slog.Logger
}

// New creates a Comparator. Settings supply the extra-file allowance of the
// counting checks and the average mode. A nil logger discards output.
func New(roots config.Roots, settings config.Settings, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Comparator{
		roots:      roots,
		extraFiles: settings.ExtraFiles,
		allColumns: settings.Average == config.AverageAllColumns,
		logger:     logger,
	}
}

// CompareText requires the listed files to be identical line by line.
func (c *Comparator) CompareText(runDir, targetDir, files string) error {
	return c.compareFiles(runDir, targetDir, fixture.SplitList(files), func() lineStrategy {
		return textStrategy{}
	})
}

// CompareTwoFloatCols is CompareNFloatCols with two columns.
func (c *Comparator) CompareTwoFloatCols(runDir, targetDir string, tol float64, files string) error {
	return c.CompareNFloatCols(runDir, targetDir, 2, tol, files)
}

// CompareNFloatCols compares ncols floats per line using relative tolerance
// (absolute near zero).
func (c *Comparator) CompareNFloatCols(runDir, targetDir string, ncols int, tol float64, files string) error {
	if err := checkNumeric(ncols, tol); err != nil {
		return err
	}
	return c.compareFiles(runDir, targetDir, fixture.SplitList(files), func() lineStrategy {
		return toleranceStrategy{ncols: ncols, tol: tol, within: withinRelative}
	})
}

// CompareNFloatColsAbsolute compares ncols floats per line using absolute
// tolerance.
func (c *Comparator) CompareNFloatColsAbsolute(runDir, targetDir string, ncols int, tol float64, files string) error {
	if err := checkNumeric(ncols, tol); err != nil {
		return err
	}
	return c.compareFiles(runDir, targetDir, fixture.SplitList(files), func() lineStrategy {
		return toleranceStrategy{ncols: ncols, tol: tol, within: withinAbsolute}
	})
}

// CompareNFloatColsAverage requires the average relative deviation of each
// file to stay within tol.
func (c *Comparator) CompareNFloatColsAverage(runDir, targetDir string, ncols int, tol float64, files string) error {
	if err := checkNumeric(ncols, tol); err != nil {
		return err
	}
	return c.compareFiles(runDir, targetDir, fixture.SplitList(files), func() lineStrategy {
		return &averageStrategy{ncols: ncols, tol: tol, allColumns: c.allColumns}
	})
}

// compareFiles resolves both directories and compares each file in order.
func (c *Comparator) compareFiles(runDir, targetDir string, files []string, newStrategy func() lineStrategy) error {
	run, err := c.resolveRunDir(runDir)
	if err != nil {
		return err
	}
	target, err := c.resolveTargetDir(run, targetDir)
	if err != nil {
		return err
	}

	for _, name := range files {
		if err := c.compareFile(filepath.Join(run, name), filepath.Join(target, name), newStrategy()); err != nil {
			return err
		}
	}
	return nil
}

// compareFile walks one file pair. Both files are closed before it returns.
func (c *Comparator) compareFile(runPath, targetPath string, s lineStrategy) error {
	c.logger.Info("comparing", "run", runPath, "target", targetPath)

	targetFile, err := openCompared(targetPath)
	if err != nil {
		return err
	}
	defer targetFile.Close()

	runFile, err := openCompared(runPath)
	if err != nil {
		return err
	}
	defer runFile.Close()

	runLines := bufio.NewReader(runFile)
	targetLines := bufio.NewReader(targetFile)

	for index := 0; ; index++ {
		runLine, err := readLine(runLines)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", runPath, err)
		}

		targetLine, err := readLine(targetLines)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read %s: %w", targetPath, err)
		}

		if err := s.compareLine(linePair{
			run:        runLine,
			target:     targetLine,
			runPath:    runPath,
			targetPath: targetPath,
			index:      index,
		}); err != nil {
			return err
		}
	}

	if err := s.finish(runPath, targetPath); err != nil {
		return err
	}

	if extra, err := readLine(targetLines); err == nil && extra != "" {
		return failure.New(failure.TrailingData, "Missing data at end of %s (target %s has more lines)",
			runPath, targetPath).At(runPath, targetPath, -1)
	}
	return nil
}

// readLine returns the next line including its terminator. The last line
// of a file may lack one. At end of input it returns "", io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		return line, nil
	}
	return line, err
}

func openCompared(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, failure.Wrap(failure.MissingFile, err, "File %s does not exist", path).At(path, "", -1)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func checkNumeric(ncols int, tol float64) error {
	if ncols < 1 {
		return failure.New(failure.InvalidArgument, "column count must be at least 1, got %d", ncols)
	}
	if tol < 0 {
		return failure.New(failure.InvalidArgument, "tolerance must not be negative, got %g", tol)
	}
	return nil
}
