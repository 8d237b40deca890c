package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/respcheck/internal/config"
)

// RootsResult is the resolved configuration shown by the roots command.
type RootsResult struct {
	Roots    config.Roots    `json:"roots"`
	Settings config.Settings `json:"settings"`
}

// NewRootsCommand creates the roots command.
func NewRootsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roots",
		Short: "Show the resolved data, target and run roots",
		Long: `Show the data, target and run roots and the comparison settings in effect.

The workspace root comes from --workspace, then the settings file, then
$WORKSPACE (a .env file may supply it), then the current directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoots(rootOpts, cmd)
		},
	}
	return cmd
}

func runRoots(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	result := RootsResult{Roots: cfg.Roots, Settings: cfg.Settings}
	if opts.Format == "json" {
		return formatter(opts, cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "data:    %s\n", cfg.Roots.Data)
	fmt.Fprintf(w, "target:  %s\n", cfg.Roots.Target)
	fmt.Fprintf(w, "run:     %s\n", cfg.Roots.Run)
	if opts.Verbose {
		fmt.Fprintf(w, "tolerance:   %g\n", cfg.Settings.Tolerance)
		fmt.Fprintf(w, "link:        %s\n", cfg.Settings.Link)
		fmt.Fprintf(w, "extra files: %d\n", cfg.Settings.ExtraFiles)
		fmt.Fprintf(w, "average:     %s\n", cfg.Settings.Average)
	}
	return nil
}
