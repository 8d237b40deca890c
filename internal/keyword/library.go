// Package keyword exposes the harness operations as named keywords taking
// string arguments, the way an external test runner calls them.
//
// Keyword names are matched loosely: case, spaces and underscores are
// ignored, so "Compare Two Float Cols", "compare_two_float_cols" and
// "compareTwoFloatCols" name the same keyword.
//
// State that a test case threads from staging to comparison (the run
// directory) lives in a Session owned by the caller.
package keyword

import (
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/respcheck/internal/compare"
	"github.com/roach88/respcheck/internal/config"
	"github.com/roach88/respcheck/internal/failure"
	"github.com/roach88/respcheck/internal/fixture"
)

// Session carries per-test-case state between keyword calls.
type Session struct {
	// RunDir is the run directory of the current test case. It is set by
	// prepare; when empty, comparisons use the process working directory.
	RunDir string
}

// Resolve returns path relative to the session run directory.
func (s *Session) Resolve(path string) string {
	if filepath.IsAbs(path) || s.RunDir == "" {
		return path
	}
	return filepath.Join(s.RunDir, path)
}

// Library binds keywords to a stager and a comparator.
type Library struct {
	stager   *fixture.Stager
	compare  *compare.Comparator
	settings config.Settings
	logger   *slog.Logger
	index    map[string]*Keyword
}

// New creates a Library. A nil logger discards output.
func New(stager *fixture.Stager, comparator *compare.Comparator, settings config.Settings, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Library{
		stager:   stager,
		compare:  comparator,
		settings: settings,
		logger:   logger,
		index:    make(map[string]*Keyword, len(builtins)),
	}
	for _, k := range builtins {
		l.index[Normalize(k.Name)] = k
	}
	return l
}

// NewFromConfig wires a Library from resolved configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Library, error) {
	linker, err := fixture.NewLinker(cfg.Settings.Link)
	if err != nil {
		return nil, err
	}
	stager := fixture.NewStager(cfg.Roots, linker, logger)
	comparator := compare.New(cfg.Roots, cfg.Settings, logger)
	return New(stager, comparator, cfg.Settings, logger), nil
}

// Normalize folds a keyword name for lookup.
func Normalize(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

// Lookup finds a keyword by (loosely matched) name.
func (l *Library) Lookup(name string) (*Keyword, bool) {
	k, ok := l.index[Normalize(name)]
	return k, ok
}

// Keywords returns every keyword sorted by name.
func (l *Library) Keywords() []*Keyword {
	out := make([]*Keyword, 0, len(l.index))
	for _, k := range l.index {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Check validates a call without running it.
func (l *Library) Check(name string, nargs int) error {
	k, ok := l.Lookup(name)
	if !ok {
		return failure.New(failure.InvalidArgument, "unknown keyword %q", name)
	}
	return k.checkArity(nargs)
}

// Call runs the named keyword with string arguments.
func (l *Library) Call(s *Session, name string, args []string) error {
	k, ok := l.Lookup(name)
	if !ok {
		return failure.New(failure.InvalidArgument, "unknown keyword %q", name)
	}
	if err := k.checkArity(len(args)); err != nil {
		return err
	}
	l.logger.Debug("keyword", "name", k.Name, "args", args, "run_dir", s.RunDir)
	return k.run(l, s, args)
}
