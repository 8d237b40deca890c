package compare

import (
	"strings"

	"github.com/roach88/respcheck/internal/failure"
)

// linePair is one run-side line and the target line read alongside it.
// Both lines keep their terminator.
type linePair struct {
	run        string
	target     string
	runPath    string
	targetPath string
	index      int
}

// lineStrategy decides whether a file pair matches.
// A fresh strategy is created for every file pair.
type lineStrategy interface {
	// compareLine checks a single line pair.
	compareLine(p linePair) error

	// finish runs after the last run-side line, before the trailing-data check.
	finish(runPath, targetPath string) error
}

// textStrategy requires byte-identical lines.
type textStrategy struct{}

func (textStrategy) compareLine(p linePair) error {
	if p.run == p.target {
		return nil
	}
	return failure.New(failure.ContentMismatch, "%q and %q differ at %s and %s at line %d",
		trimEOL(p.run), trimEOL(p.target), p.runPath, p.targetPath, p.index).
		At(p.runPath, p.targetPath, p.index)
}

func (textStrategy) finish(string, string) error { return nil }

// toleranceStrategy compares ncols floats per line with a per-value test.
// Lines that fail numerically but are identical as text (titles, headers)
// are accepted.
type toleranceStrategy struct {
	ncols  int
	tol    float64
	within func(a, b, tol float64) bool
}

func (s toleranceStrategy) compareLine(p linePair) error {
	err := s.compareNumeric(p)
	if err == nil || p.run == p.target {
		return nil
	}
	return err
}

func (s toleranceStrategy) compareNumeric(p linePair) error {
	runValues, err := extractFloats(s.ncols, p.run, p.runPath, p.index)
	if err != nil {
		return err
	}
	targetValues, err := extractFloats(s.ncols, p.target, p.targetPath, p.index)
	if err != nil {
		return err
	}
	for i := range runValues {
		a, b := runValues[i], targetValues[i]
		if !s.within(a, b, s.tol) {
			return failure.New(failure.ToleranceExceeded, "%g and %g differ at %s and %s at line %d (column %d, tolerance %g)",
				a, b, p.runPath, p.targetPath, p.index, i+1, s.tol).
				At(p.runPath, p.targetPath, p.index)
		}
	}
	return nil
}

func (toleranceStrategy) finish(string, string) error { return nil }

// averageStrategy accumulates deviations over the whole file and only fails
// when their mean exceeds tol.
type averageStrategy struct {
	ncols      int
	tol        float64
	allColumns bool

	total float64
	count int
}

func (s *averageStrategy) compareLine(p linePair) error {
	runValues, err := extractFloats(s.ncols, p.run, p.runPath, p.index)
	if err == nil {
		var targetValues []float64
		targetValues, err = extractFloats(s.ncols, p.target, p.targetPath, p.index)
		if err == nil {
			if p.run == p.target {
				// identical text agrees even where the values are NaN
				s.agree()
				return nil
			}
			s.accumulate(runValues, targetValues)
			return nil
		}
	}
	if p.run == p.target {
		return nil
	}
	return err
}

// accumulate adds the deviations of one line. In last-column mode only the
// final column contributes, one sample per line.
func (s *averageStrategy) accumulate(run, target []float64) {
	if s.allColumns {
		for i := range run {
			s.total += deviation(run[i], target[i], s.tol)
			s.count++
		}
		return
	}
	last := len(run) - 1
	s.total += deviation(run[last], target[last], s.tol)
	s.count++
}

// agree records one line without deviation.
func (s *averageStrategy) agree() {
	if s.allColumns {
		s.count += s.ncols
		return
	}
	s.count++
}

func (s *averageStrategy) finish(runPath, targetPath string) error {
	if s.count == 0 {
		return nil
	}
	average := s.total / float64(s.count)
	if !(average <= s.tol) {
		return failure.New(failure.ToleranceExceeded, "%s and %s have an average (relative) difference of %g > %g",
			runPath, targetPath, average, s.tol).At(runPath, targetPath, -1)
	}
	return nil
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}
