// Package cli implements the cobra command tree for regionplot.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/regionplot/internal/config"
	"github.com/roach88/regionplot/internal/dataset"
	"github.com/roach88/regionplot/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Execute builds the command tree, runs it until SIGINT or SIGTERM, and
// returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "regionplot",
		Short: "Bar chart of a cross-tabulated table, one category at a time",
		Long: `regionplot serves a page with a category selector and a bar chart of
the selected category. The selector and the chart stay in sync through a
shared selection.

The dataset is a cross-tabulated table in YAML, JSON or CUE. Without
--dataset the embedded WorldPhones table is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := config.Load(cmd, opts.ConfigFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "", err)
			}
			opts.Verbose = cfg.Verbose

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.EffectiveLogLevel()),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
			)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default: .regionplot.yaml)")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.BoolP("verbose", "v", false, "verbose output and debug logging")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.String("dataset", "", "table file (.yaml, .json, .cue); empty uses the embedded WorldPhones table")
	pf.String("primary", "", "dimension plotted on the x axis (default: the table's rows)")
	pf.String("secondary", "", "dimension offered in the selector (default: the table's columns)")
	pf.String("value", "", "name of the measure (default: the table's measure)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "", err)
	})

	cmd.AddCommand(
		NewServeCommand(opts),
		NewNormalizeCommand(opts),
		NewRenderCommand(opts),
		NewValidateCommand(opts),
		NewTraceCommand(opts),
		NewReplayCommand(opts),
		NewTestCommand(opts),
	)
	return cmd
}

// datasetSource returns the configured table source.
func datasetSource(cfg *config.Config) dataset.Source {
	if cfg.Dataset == "" {
		return dataset.WorldPhones()
	}
	return dataset.File(cfg.Dataset)
}
