package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/regionplot/internal/app"
	"github.com/roach88/regionplot/internal/config"
	"github.com/roach88/regionplot/internal/engine"
	"github.com/roach88/regionplot/internal/logging"
	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/server"
	"github.com/roach88/regionplot/internal/store"
	"github.com/roach88/regionplot/internal/watch"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the selector and chart page",
		Long: `Serve the page over HTTP.

The page shows the load status, a selector of the table's categories and
the bar chart of the selected category. A dataset that fails to load is
reported on the page instead of the chart.

With --watch the dataset file is reloaded whenever it changes. With --db
every event and selection change is appended to a SQLite event log that
the trace and replay commands read.

Examples:
  regionplot serve
  regionplot serve --dataset phones.cue --watch
  regionplot serve --http-addr :9000 --db events.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	f := cmd.Flags()
	f.String("http-addr", ":8080", "HTTP listen address")
	f.Bool("watch", false, "reload the dataset when its file changes")
	f.Duration("watch-debounce", watch.DefaultDebounce, "quiet period before a reload")
	f.String("db", "", "SQLite event log path (empty disables the log)")
	f.Int("max-hops", 64, "notification budget per selection change")
	f.String("chart-title", render.DefaultOptions().Title, "chart title prefix")
	f.String("chart-caption", render.DefaultOptions().Caption, "chart caption")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	chart := render.NewBarChart(cfg.ChartOptions(), logger)
	pageCfg := app.Config{
		Source:   datasetSource(cfg),
		Renderer: chart,
		Roles:    cfg.Roles(),
		MaxHops:  cfg.MaxHops,
		Logger:   logger,
	}

	if cfg.DB != "" {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		last, err := st.LastSeq(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read database", err)
		}
		pageCfg.EventLog = st
		pageCfg.Clock = engine.NewClockAt(last)
		logger.Info("event log opened", "path", cfg.DB, "last_seq", last)
	}

	page, err := app.New(pageCfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "", err)
	}

	srv, err := server.New(server.Config{
		Addr:   cfg.HTTPAddr,
		Title:  cfg.ChartTitle,
		Page:   page,
		Chart:  chart,
		Logger: logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	engineDone := make(chan error, 1)
	go func() { engineDone <- page.Run(runCtx) }()

	// A failed startup is shown on the page; the server keeps running so a
	// reload can recover.
	_ = page.Start(runCtx)

	watchDone := make(chan error, 1)
	if cfg.Watch {
		go func() {
			watchDone <- watch.Run(runCtx, watch.Options{
				Path:     cfg.Dataset,
				Debounce: cfg.WatchDebounce,
				Logger:   logger,
			}, page.Reload)
		}()
	} else {
		close(watchDone)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving on %s\n", srv.Addr())
	serveErr := srv.Start(runCtx)

	cancel()
	if err := <-watchDone; err != nil {
		logger.Error("watcher stopped", "error", err)
	}
	if err := waitEngine(engineDone, 5*time.Second); err != nil {
		logger.Warn("engine shutdown", "error", err)
	}

	if serveErr != nil {
		return WrapExitError(ExitCommandError, "http server failed", serveErr)
	}
	return nil
}

func waitEngine(done <-chan error, timeout time.Duration) error {
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-time.After(timeout):
		return errors.New("timed out waiting for the event loop")
	}
}
