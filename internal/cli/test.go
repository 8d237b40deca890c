package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/respcheck/internal/config"
	"github.com/roach88/respcheck/internal/harness"
	"github.com/roach88/respcheck/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter   string   // suite filter (doublestar pattern)
	Database string   // optional SQLite database recording the runs
	Env      []string // KEY=VALUE pairs added to run-step environments
}

// SuiteOutcome is the result of one suite file.
type SuiteOutcome struct {
	Path   string          `json:"path"`
	Name   string          `json:"name,omitempty"`
	Pass   bool            `json:"pass"`
	Error  string          `json:"error,omitempty"`
	RunID  string          `json:"run_id,omitempty"`
	Result *harness.Result `json:"result,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Suites []SuiteOutcome `json:"suites"`
	Passed int            `json:"passed"`
	Failed int            `json:"failed"`
	Total  int            `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <suite-file-or-dir>...",
		Short: "Run comparison suites",
		Long: `Run YAML suites of keyword and command steps.

Directories are searched recursively for .yaml and .yml files. --filter is
a glob (** crosses directories) matched against each file's path relative
to the directory it was found in, without the extension.

Exit codes:
  0 - All suites passed
  1 - One or more suites failed or could not be loaded
  2 - Command error (invalid paths, configuration, database)

Examples:
  respcheck test ./suites
  respcheck test ./suites --filter "response/**"
  respcheck test ./suites --db ./respcheck.db --format json
  respcheck test ./suites/response.yaml --env EVALRESP=/usr/local/bin/evalresp`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")
	cmd.Flags().StringArrayVar(&opts.Env, "env", nil, "KEY=VALUE added to the environment of run steps (repeatable)")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	if opts.Filter != "" && !doublestar.ValidatePattern(opts.Filter) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid filter pattern %q", opts.Filter))
	}
	for _, kv := range opts.Env {
		if !strings.Contains(kv, "=") {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid --env %q: want KEY=VALUE", kv))
		}
	}

	var suiteFiles []string
	for _, p := range paths {
		found, err := findSuiteFiles(p, opts.Filter)
		if err != nil {
			return err
		}
		suiteFiles = append(suiteFiles, found...)
	}

	result := TestResult{Suites: make([]SuiteOutcome, 0, len(suiteFiles)), Total: len(suiteFiles)}
	if len(suiteFiles) == 0 {
		if opts.Format == "json" {
			return formatter(opts.RootOptions, cmd).Success(result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No suites found.")
		return nil
	}

	env, err := newEnvironment(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var interrupted error
	for _, path := range suiteFiles {
		outcome, err := runSuiteFile(ctx, path, env, opts, st)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		result.Suites = append(result.Suites, outcome)
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if opts.Format != "json" {
			printOutcome(cmd, outcome)
		}
		if err != nil {
			interrupted = err
			break
		}
	}

	if opts.Format == "json" {
		if err := formatter(opts.RootOptions, cmd).Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if interrupted != nil {
		return WrapExitError(ExitCommandError, "interrupted", interrupted)
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d suite(s) failed", result.Failed, result.Total))
	}
	return nil
}

// findSuiteFiles returns the suite files at path in lexical order. A file
// argument is taken as-is; directories are walked.
func findSuiteFiles(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("suite path not found: %s", path))
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			rel, err := filepath.Rel(path, p)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.ToSlash(rel), ext)
			matched, err := doublestar.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to find suites", err)
	}
	sort.Strings(files)
	return files, nil
}

// runSuiteFile loads, checks and runs one suite. Load and keyword errors
// fail the suite; only a cancelled context is returned as an error.
func runSuiteFile(ctx context.Context, path string, env *environment, opts *TestOptions, st *store.Store) (SuiteOutcome, error) {
	outcome := SuiteOutcome{Path: path}

	suite, err := harness.LoadSuite(path)
	if err != nil {
		outcome.Error = err.Error()
		return outcome, nil
	}
	outcome.Name = suite.Name

	if err := harness.CheckKeywords(suite, env.lib); err != nil {
		outcome.Error = fmt.Sprintf("%s: %v", path, err)
		return outcome, nil
	}

	result, runErr := harness.Run(ctx, suite, harness.RunOptions{
		Library: env.lib,
		Logger:  env.logger,
		Env:     opts.Env,
	})
	if result == nil {
		outcome.Error = runErr.Error()
		return outcome, nil
	}
	outcome.Result = result
	outcome.Pass = result.Pass && runErr == nil

	if st != nil {
		id, err := st.RecordRun(ctx, store.FromResult(result, settingsMap(env.cfg.Settings)))
		if err != nil {
			return outcome, WrapExitError(ExitCommandError, "failed to record run", err)
		}
		outcome.RunID = id
		env.logger.Debug("recorded run", "suite", suite.Name, "run_id", id)
	}
	return outcome, runErr
}

func printOutcome(cmd *cobra.Command, outcome SuiteOutcome) {
	w := cmd.OutOrStdout()
	if outcome.Result == nil {
		fmt.Fprintf(w, "suite %s: ERROR\n  %s\n", outcome.Path, outcome.Error)
		return
	}
	fmt.Fprint(w, harness.Summary(outcome.Result))
	if outcome.RunID != "" {
		fmt.Fprintf(w, "  recorded as %s\n", outcome.RunID)
	}
}

// settingsMap flattens the settings recorded alongside a run.
func settingsMap(s config.Settings) map[string]string {
	return map[string]string{
		"tolerance":   strconv.FormatFloat(s.Tolerance, 'g', -1, 64),
		"link":        s.Link,
		"extra_files": strconv.Itoa(s.ExtraFiles),
		"average":     s.Average,
	}
}
