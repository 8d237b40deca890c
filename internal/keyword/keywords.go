package keyword

import (
	"fmt"
	"strconv"

	"github.com/roach88/respcheck/internal/failure"
	"github.com/roach88/respcheck/internal/fileops"
)

// Keyword is one callable operation of the library.
type Keyword struct {
	Name    string
	MinArgs int
	MaxArgs int
	Usage   string

	run func(l *Library, s *Session, args []string) error
}

func (k *Keyword) checkArity(n int) error {
	if n < k.MinArgs || n > k.MaxArgs {
		if k.MinArgs == k.MaxArgs {
			return failure.New(failure.InvalidArgument, "%s expects %d arguments, got %d (usage: %s)", k.Name, k.MinArgs, n, k.Usage)
		}
		return failure.New(failure.InvalidArgument, "%s expects %d to %d arguments, got %d (usage: %s)", k.Name, k.MinArgs, k.MaxArgs, n, k.Usage)
	}
	return nil
}

// String renders the usage line.
func (k *Keyword) String() string {
	return k.Usage
}

// Names returns the canonical keyword names in sorted order.
func (l *Library) Names() []string {
	ks := l.Keywords()
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = k.Name
	}
	return names
}

// opt returns args[i], or "" when the optional argument was omitted.
func opt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// tolerance parses tol; empty means the configured default.
func (l *Library) tolerance(tol string) (float64, error) {
	if tol == "" {
		return l.settings.Tolerance, nil
	}
	v, err := strconv.ParseFloat(tol, 64)
	if err != nil {
		return 0, failure.New(failure.InvalidArgument, "tolerance %q is not a number", tol)
	}
	return v, nil
}

func count(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, failure.New(failure.InvalidArgument, "%s %q is not an integer", name, s)
	}
	return v, nil
}

var builtins = []*Keyword{
	{
		Name: "prepare", MinArgs: 2, MaxArgs: 3,
		Usage: "prepare dest [sourceSubdir] files",
		run: func(l *Library, s *Session, args []string) error {
			dest, source, files := args[0], "", args[len(args)-1]
			if len(args) == 3 {
				source = args[1]
			}
			run, err := l.stager.Prepare(dest, source, files)
			if err != nil {
				return err
			}
			s.RunDir = run
			return nil
		},
	},
	{
		Name: "compareText", MinArgs: 2, MaxArgs: 2,
		Usage: "compareText targetDir files",
		run: func(l *Library, s *Session, args []string) error {
			return l.compare.CompareText(s.RunDir, args[0], args[1])
		},
	},
	{
		Name: "compareTwoFloatCols", MinArgs: 3, MaxArgs: 3,
		Usage: "compareTwoFloatCols targetDir tol files",
		run: func(l *Library, s *Session, args []string) error {
			tol, err := l.tolerance(args[1])
			if err != nil {
				return err
			}
			return l.compare.CompareTwoFloatCols(s.RunDir, args[0], tol, args[2])
		},
	},
	nFloatCols("compareNFloatCols", func(l *Library, s *Session, target string, ncols int, tol float64, files string) error {
		return l.compare.CompareNFloatCols(s.RunDir, target, ncols, tol, files)
	}),
	nFloatCols("compareNFloatColsAbsolute", func(l *Library, s *Session, target string, ncols int, tol float64, files string) error {
		return l.compare.CompareNFloatColsAbsolute(s.RunDir, target, ncols, tol, files)
	}),
	nFloatCols("compareNFloatColsAverage", func(l *Library, s *Session, target string, ncols int, tol float64, files string) error {
		return l.compare.CompareNFloatColsAverage(s.RunDir, target, ncols, tol, files)
	}),
	{
		Name: "compareTargetFilesText", MinArgs: 0, MaxArgs: 1,
		Usage: "compareTargetFilesText [targetDir]",
		run: func(l *Library, s *Session, args []string) error {
			return l.compare.CompareTargetFilesText(s.RunDir, opt(args, 0))
		},
	},
	targetTol("compareTargetFilesTwoFloatCols", func(l *Library, s *Session, target string, tol float64) error {
		return l.compare.CompareTargetFilesTwoFloatCols(s.RunDir, target, tol)
	}),
	targetTol("compareTargetFilesTwoFloatColsAverage", func(l *Library, s *Session, target string, tol float64) error {
		return l.compare.CompareTargetFilesTwoFloatColsAverage(s.RunDir, target, tol)
	}),
	{
		Name: "countAndCompareTargetFilesText", MinArgs: 0, MaxArgs: 1,
		Usage: "countAndCompareTargetFilesText [targetDir]",
		run: func(l *Library, s *Session, args []string) error {
			return l.compare.CountAndCompareTargetFilesText(s.RunDir, opt(args, 0))
		},
	},
	targetTol("countAndCompareTargetFilesTwoFloatCols", func(l *Library, s *Session, target string, tol float64) error {
		return l.compare.CountAndCompareTargetFilesTwoFloatCols(s.RunDir, target, tol)
	}),
	{
		Name: "countAndCompareTargetFilesNFloatCols", MinArgs: 1, MaxArgs: 3,
		Usage: "countAndCompareTargetFilesNFloatCols ncols [targetDir] [tol]",
		run: func(l *Library, s *Session, args []string) error {
			ncols, err := count("ncols", args[0])
			if err != nil {
				return err
			}
			tol, err := l.tolerance(opt(args, 2))
			if err != nil {
				return err
			}
			return l.compare.CountAndCompareTargetFilesNFloatCols(s.RunDir, ncols, opt(args, 1), tol)
		},
	},
	{
		Name: "checkNumberOfFiles", MinArgs: 1, MaxArgs: 1,
		Usage: "checkNumberOfFiles n",
		run: func(l *Library, s *Session, args []string) error {
			n, err := count("n", args[0])
			if err != nil {
				return err
			}
			return l.compare.CheckNumberOfFiles(s.RunDir, n)
		},
	},
	{
		Name: "cutFields", MinArgs: 2, MaxArgs: 4,
		Usage: "cutFields source destination [delim] [fields]",
		run: func(l *Library, s *Session, args []string) error {
			delim := opt(args, 2)
			if delim == "" {
				delim = ","
			}
			fields := opt(args, 3)
			if fields == "" {
				fields = "1-"
			}
			return fileops.CutFields(s.Resolve(args[0]), s.Resolve(args[1]), delim, fields)
		},
	},
	{
		Name: "clearVersion", MinArgs: 1, MaxArgs: 1,
		Usage: "clearVersion path",
		run: func(l *Library, s *Session, args []string) error {
			return fileops.ClearVersion(s.Resolve(args[0]))
		},
	},
}

func nFloatCols(name string, fn func(l *Library, s *Session, target string, ncols int, tol float64, files string) error) *Keyword {
	return &Keyword{
		Name: name, MinArgs: 4, MaxArgs: 4,
		Usage: fmt.Sprintf("%s targetDir ncols tol files", name),
		run: func(l *Library, s *Session, args []string) error {
			ncols, err := count("ncols", args[1])
			if err != nil {
				return err
			}
			tol, err := l.tolerance(args[2])
			if err != nil {
				return err
			}
			return fn(l, s, args[0], ncols, tol, args[3])
		},
	}
}

func targetTol(name string, fn func(l *Library, s *Session, target string, tol float64) error) *Keyword {
	return &Keyword{
		Name: name, MinArgs: 0, MaxArgs: 2,
		Usage: fmt.Sprintf("%s [targetDir] [tol]", name),
		run: func(l *Library, s *Session, args []string) error {
			tol, err := l.tolerance(opt(args, 1))
			if err != nil {
				return err
			}
			return fn(l, s, opt(args, 0), tol)
		},
	}
}
