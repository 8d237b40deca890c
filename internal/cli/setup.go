package cli

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/roach88/respcheck/internal/config"
	"github.com/roach88/respcheck/internal/keyword"
)

// newLogger builds the command logger. Logs always go to w (stderr) so that
// stdout stays clean for results; JSON output gets a JSON log handler.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	if opts.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		NoColor: runtime.GOOS == "windows",
		Level:   level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// loadConfig resolves roots and settings from the global flags.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		SettingsPath: opts.Config,
		EnvFile:      opts.EnvFile,
		Workspace:    opts.Workspace,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	return cfg, nil
}

// environment is what keyword-running commands share.
type environment struct {
	cfg    *config.Config
	lib    *keyword.Library
	logger *slog.Logger
}

func newEnvironment(opts *RootOptions, cmd *cobra.Command) (*environment, error) {
	logger := newLogger(opts, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved roots", "data", cfg.Roots.Data, "target", cfg.Roots.Target, "run", cfg.Roots.Run)

	lib, err := keyword.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid settings", err)
	}
	return &environment{cfg: cfg, lib: lib, logger: logger}, nil
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
}
