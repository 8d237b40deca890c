package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/respcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Suite    string // optional - filter to one suite
	Limit    int
	RunID    string // optional - show one run in full
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded suite runs",
		Long: `Show suite runs recorded by "respcheck test --db".

Without --run, lists runs newest first. With --run, shows every case and
step of that run, including the failure codes.

Examples:
  respcheck history --db ./respcheck.db
  respcheck history --db ./respcheck.db --suite response --limit 5
  respcheck history --db ./respcheck.db --run 0190f7c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Suite, "suite", "", "only runs of this suite")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs listed (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run with its cases and steps")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	out := formatter(opts.RootOptions, cmd)

	if opts.RunID != "" {
		rec, err := st.LoadRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitFailure, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load run", err)
		}
		if opts.Format == "json" {
			return out.Success(rec)
		}
		printRun(cmd.OutOrStdout(), rec)
		return nil
	}

	runs, err := st.ListRuns(ctx, opts.Suite, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if opts.Format == "json" {
		return out.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-4s %d/%d  %s\n",
			truncateID(r.ID), r.StartedAt.Format(time.RFC3339), status(r.Pass), r.Passed, r.CaseCount, r.Suite)
	}
	return nil
}

func printRun(w io.Writer, rec store.RunRecord) {
	fmt.Fprintf(w, "Run: %s\n", rec.ID)
	fmt.Fprintf(w, "Suite: %s (%s)\n", rec.Suite, rec.Path)
	fmt.Fprintf(w, "Status: %s (%d/%d cases passed)\n", status(rec.Pass), rec.Passed, rec.CaseCount)
	fmt.Fprintf(w, "Duration: %s\n", rec.FinishedAt.Sub(rec.StartedAt))
	fmt.Fprintln(w)

	for _, c := range rec.Cases {
		fmt.Fprintf(w, "  %s %s\n", status(c.Pass), c.Name)
		for _, s := range c.Steps {
			mark := "ok  "
			if !s.Pass {
				mark = "FAIL"
			}
			fmt.Fprintf(w, "    %s %s %v (%s)\n", mark, s.Name, s.Args, s.Duration)
			if !s.Pass {
				fmt.Fprintf(w, "         %s\n", s.Error)
			}
		}
		if c.Skipped > 0 {
			fmt.Fprintf(w, "    skipped %d step(s)\n", c.Skipped)
		}
	}
}

func status(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

// truncateID shortens an ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
