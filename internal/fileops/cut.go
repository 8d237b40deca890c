// Package fileops holds the small file rewriting helpers used around
// comparisons: extracting delimited fields and scrubbing version banners.
package fileops

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/respcheck/internal/failure"
)

// FieldRange is a 1-based inclusive range of fields. A zero End means the
// range runs to the last field.
type FieldRange struct {
	Start int
	End   int
}

// ParseFieldRange parses "start-end", "start-", "-end", a single field
// number, or "" (every field).
func ParseFieldRange(fields string) (FieldRange, error) {
	parts := strings.Split(fields, "-")
	if len(parts) > 2 {
		return FieldRange{}, failure.New(failure.InvalidRange, "The fields '%s' has too many ranges", fields)
	}

	bound := func(s string) (int, error) {
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return 0, failure.New(failure.InvalidRange, "The fields '%s' has an invalid bound %q", fields, s)
		}
		return n, nil
	}

	start, err := bound(parts[0])
	if err != nil {
		return FieldRange{}, err
	}
	if start == 0 {
		start = 1
	}

	if len(parts) == 1 {
		if parts[0] == "" {
			return FieldRange{Start: 1}, nil
		}
		return FieldRange{Start: start, End: start}, nil
	}

	end, err := bound(parts[1])
	if err != nil {
		return FieldRange{}, err
	}
	if end != 0 && end < start {
		return FieldRange{}, failure.New(failure.InvalidRange, "The fields '%s' is a decreasing range", fields)
	}
	return FieldRange{Start: start, End: end}, nil
}

// Cut returns the fields of line selected by r, joined by delim.
// The start is clamped to the last field and the end to the field count,
// so a short line still yields its last field.
func (r FieldRange) Cut(line, delim string) string {
	parts := strings.Split(line, delim)
	n := len(parts)

	from := r.Start - 1
	if from >= n {
		from = n - 1
	}
	to := n
	if r.End != 0 && r.End < n {
		to = r.End
	}
	if from >= to {
		return ""
	}
	return strings.Join(parts[from:to], delim)
}

// CutFields writes the selected fields of every line of source to
// destination, like cut -d delim -f fields.
func CutFields(source, destination, delim, fields string) (err error) {
	if delim == "" {
		return failure.New(failure.InvalidArgument, "delimiter must not be empty")
	}
	r, err := ParseFieldRange(fields)
	if err != nil {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("create %s: %w", destination, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", destination, closeErr)
		}
	}()

	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if _, err := writer.WriteString(r.Cut(line, delim) + "\n"); err != nil {
				return fmt.Errorf("write %s: %w", destination, err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", source, readErr)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", destination, err)
	}
	return nil
}
