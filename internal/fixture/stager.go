// Package fixture stages input data for one test case.
//
// A stage is one-shot: Prepare creates a fresh run directory under the run
// root and installs the listed fixture files into it. It never merges into a
// directory left behind by an earlier run, and it never deletes anything;
// cleanup of the run tree belongs to whoever owns the workspace.
package fixture

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/respcheck/internal/config"
	"github.com/roach88/respcheck/internal/failure"
)

// Stager creates run directories and installs fixtures into them.
type Stager struct {
	roots  config.Roots
	linker Linker
	logger *slog.Logger
}

// NewStager creates a Stager. A nil linker means symbolic links and a nil
// logger discards output.
func NewStager(roots config.Roots, linker Linker, logger *slog.Logger) *Stager {
	if linker == nil {
		linker = SymlinkLinker{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Stager{roots: roots, linker: linker, logger: logger}
}

// Roots returns the roots the stager works in.
func (s *Stager) Roots() config.Roots {
	return s.roots
}

// Prepare creates the run directory dest (relative to the run root, may
// contain separators) and installs each file of the comma-separated list
// from the data root, or from sourceSubdir below it when non-empty.
//
// It returns the absolute run directory. Callers carry that path into the
// comparison calls for the same test case.
func (s *Stager) Prepare(dest, sourceSubdir, files string) (string, error) {
	run := filepath.Join(s.roots.Run, dest)
	if _, err := os.Lstat(run); err == nil {
		return "", failure.New(failure.DirectoryAlreadyExists, "Directory %s already exists", run)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", failure.Wrap(failure.DirectoryAlreadyExists, err, "cannot check %s", run)
	}

	source := filepath.Join(s.roots.Data, sourceSubdir)
	names := SplitList(files)

	// All sources must exist before the run directory is created.
	for _, name := range names {
		src := filepath.Join(source, name)
		if _, err := os.Stat(src); err != nil {
			return "", failure.Wrap(failure.SourceNotFound, err, "Fixture %s not found", src).At(src, "", -1)
		}
	}

	if err := os.MkdirAll(run, 0o755); err != nil {
		return "", err
	}
	s.logger.Info("staging run directory", "dir", run, "files", len(names))

	for _, name := range names {
		src := filepath.Join(source, name)
		dst := filepath.Join(run, name)
		if err := s.linker.Link(src, dst); err != nil {
			return "", failure.Wrap(failure.SourceNotFound, err, "cannot install fixture %s", src).At(src, "", -1)
		}
		s.logger.Debug("installed fixture", "source", src, "dest", dst)
	}

	abs, err := filepath.Abs(run)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// SplitList splits a comma-separated file list, dropping empty entries.
func SplitList(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
