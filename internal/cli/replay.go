package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/regionplot/internal/app"
	"github.com/roach88/regionplot/internal/logging"
	"github.com/roach88/regionplot/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run an event log and compare the result",
		Long: `Re-run every event recorded in the log against fresh components and
compare the selection notifications they produce with the recorded ones.

Exit codes:
  0 - Replay reproduced the recorded notifications
  1 - Replay diverged
  2 - Command error (database missing or unreadable)

Examples:
  regionplot replay --db events.db
  regionplot replay --db events.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReplay(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event log (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions) error {
	ctx := cmd.Context()
	f := newFormatter(cmd, opts.RootOptions)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := app.Replay(ctx, st, logging.FromContext(ctx))
	if err != nil {
		return WrapExitError(ExitFailure, "replay failed", err)
	}

	if f.JSON() {
		status := "ok"
		if !result.Matched() {
			status = "diverged"
		}
		if err := f.Respond(status, result); err != nil {
			return err
		}
	} else {
		printReplay(f.Writer, result)
	}

	if !result.Matched() {
		return NewExitError(ExitFailure, fmt.Sprintf("replay diverged: %d differences", len(result.Differences)))
	}
	return nil
}

func printReplay(w io.Writer, r app.ReplayResult) {
	fmt.Fprintf(w, "Replayed %d events: %d recorded notifications, %d replayed\n",
		r.Events, r.Recorded, r.Replayed)
	if r.Final != "" {
		fmt.Fprintf(w, "Final selection: %s\n", r.Final)
	}
	if r.Matched() {
		fmt.Fprintln(w, "✓ Replay matched")
		return
	}
	fmt.Fprintf(w, "✗ Replay diverged (%d differences)\n", len(r.Differences))
	for _, d := range r.Differences {
		fmt.Fprintf(w, "  %s\n", d)
	}
}

// openExisting opens an event log that must already exist. store.Open
// would otherwise create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
		}
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
