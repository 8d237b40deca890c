package compare

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/respcheck/internal/failure"
)

// deviation returns the difference between a and b, relative to the larger
// magnitude. Below tol the magnitude is too small to divide by and the
// absolute difference is returned instead. Equal values (including equal
// infinities) deviate by 0; a NaN on either side yields NaN.
func deviation(a, b, tol float64) float64 {
	if a == b {
		return 0
	}
	magnitude := math.Max(math.Abs(a), math.Abs(b))
	if magnitude < tol {
		return math.Abs(a - b)
	}
	return math.Abs(a-b) / magnitude
}

// withinRelative reports whether a and b agree to tol (see deviation).
// NaN never agrees with anything.
func withinRelative(a, b, tol float64) bool {
	return a == b || deviation(a, b, tol) <= tol
}

// withinAbsolute reports whether |a-b| <= tol regardless of magnitude.
func withinAbsolute(a, b, tol float64) bool {
	return a == b || math.Abs(a-b) <= tol
}

// extractFloats parses exactly ncols whitespace-separated floats from line.
// Values out of float64 range parse as ±Inf.
func extractFloats(ncols int, line, path string, index int) ([]float64, error) {
	if line == "" {
		return nil, failure.New(failure.MalformedData,
			"Data missing from %s at line %d", path, index).At(path, "", index)
	}

	fields := strings.Fields(line)
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, failure.New(failure.MalformedData,
				"Bad data in %s at line %d", path, index).At(path, "", index)
		}
		values = append(values, v)
	}

	if len(values) != ncols {
		return nil, failure.New(failure.MalformedData,
			"Missing data in %s at line %d (found %d columns, expected %d)",
			path, index, len(values), ncols).At(path, "", index)
	}
	return values, nil
}
