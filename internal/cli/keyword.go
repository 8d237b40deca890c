package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/respcheck/internal/config"
	"github.com/roach88/respcheck/internal/keyword"
)

// KeywordOptions holds flags for the keyword command.
type KeywordOptions struct {
	*RootOptions
	RunDir string
}

// KeywordResult is the JSON payload of a successful keyword call.
type KeywordResult struct {
	Keyword string   `json:"keyword"`
	Args    []string `json:"args"`
	RunDir  string   `json:"run_dir,omitempty"`
}

// NewKeywordCommand creates the keyword command.
func NewKeywordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeywordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keyword <name> [args...]",
		Short: "Call one keyword",
		Long: `Call one keyword with string arguments, the way an external test runner
would. Names match regardless of case, spaces and underscores.

Comparison keywords work on --run-dir, or on the current directory when it
is not given. prepare prints the run directory it created.

Exit codes:
  0 - The keyword succeeded
  1 - The keyword failed (the failure code is printed)
  2 - Command error (bad configuration)

Examples:
  respcheck keyword prepare response/simple simple RESP.IU.ANMO..BHZ
  respcheck keyword "count and compare target files two float cols" --run-dir response/simple
  respcheck keyword compareText response/simple AMP.IU.ANMO..BHZ --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyword(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunDir, "run-dir", "", "run directory (relative paths are below the run root)")

	return cmd
}

func runKeyword(opts *KeywordOptions, name string, args []string, cmd *cobra.Command) error {
	env, err := newEnvironment(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	session := &keyword.Session{RunDir: opts.RunDir}
	if session.RunDir != "" && !filepath.IsAbs(session.RunDir) {
		session.RunDir = filepath.Join(env.cfg.Roots.Run, session.RunDir)
	}

	out := formatter(opts.RootOptions, cmd)
	if err := env.lib.Call(session, name, args); err != nil {
		if ferr := out.Failure(err); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, fmt.Sprintf("keyword %s failed", name))
	}

	canonical := name
	if k, ok := env.lib.Lookup(name); ok {
		canonical = k.Name
	}
	if opts.Format == "json" {
		if args == nil {
			args = []string{}
		}
		return out.Success(KeywordResult{Keyword: canonical, Args: args, RunDir: session.RunDir})
	}
	if canonical == "prepare" {
		fmt.Fprintln(cmd.OutOrStdout(), session.RunDir)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", canonical)
	return nil
}

// KeywordInfo describes one keyword for the keywords command.
type KeywordInfo struct {
	Name    string `json:"name"`
	Usage   string `json:"usage"`
	MinArgs int    `json:"min_args"`
	MaxArgs int    `json:"max_args"`
}

// NewKeywordsCommand creates the keywords command.
func NewKeywordsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "keywords",
		Short:         "List the available keywords",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeywords(rootOpts, cmd)
		},
	}
}

func listKeywords(opts *RootOptions, cmd *cobra.Command) error {
	// Keyword metadata does not depend on roots or settings.
	lib := keyword.New(nil, nil, config.DefaultSettings(), nil)

	infos := make([]KeywordInfo, 0)
	for _, k := range lib.Keywords() {
		infos = append(infos, KeywordInfo{Name: k.Name, Usage: k.Usage, MinArgs: k.MinArgs, MaxArgs: k.MaxArgs})
	}

	if opts.Format == "json" {
		return formatter(opts, cmd).Success(infos)
	}
	for _, info := range infos {
		fmt.Fprintln(cmd.OutOrStdout(), info.Usage)
	}
	return nil
}
