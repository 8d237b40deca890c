package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/respcheck/internal/config"
	"github.com/roach88/respcheck/internal/harness"
	"github.com/roach88/respcheck/internal/keyword"
)

// SuiteProblem is one suite that failed validation.
type SuiteProblem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Suites int            `json:"suites"`
	Errors []SuiteProblem `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite-file-or-dir>...",
		Short: "Validate suites without running them",
		Long: `Validate suite files without running them.

Checks YAML structure, unknown fields, step shape, expected failure codes,
and that every keyword exists and gets an acceptable number of arguments.
Nothing is staged and no workspace is needed.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	out := formatter(opts, cmd)
	lib := keyword.New(nil, nil, config.DefaultSettings(), nil)

	var files []string
	for _, p := range paths {
		found, err := findSuiteFiles(p, "")
		if err != nil {
			return err
		}
		files = append(files, found...)
	}

	result := ValidationResult{Suites: len(files)}
	for _, path := range files {
		suite, err := harness.LoadSuite(path)
		if err != nil {
			result.Errors = append(result.Errors, SuiteProblem{Path: path, Message: err.Error()})
			continue
		}
		if err := harness.CheckKeywords(suite, lib); err != nil {
			result.Errors = append(result.Errors, SuiteProblem{Path: path, Message: fmt.Sprintf("%s: %v", path, err)})
		}
	}
	result.Valid = len(result.Errors) == 0

	if opts.Format == "json" {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", e.Message)
		}
		if result.Valid {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d suite(s) valid\n", result.Suites)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}
