package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called once per debounced change.
type ReloadFunc func(ctx context.Context) error

// Options configures a watch.
type Options struct {
	// Path is the dataset file to watch.
	Path string

	// Debounce is the quiet period before a reload.
	Debounce time.Duration

	Logger *slog.Logger
}

// Run watches opts.Path and calls reload after each burst of changes to it,
// blocking until ctx ends. Reload errors are logged and watching continues.
//
// The file's directory is watched rather than the file itself so that
// editors which save by renaming a temporary file over the original are
// still seen.
func Run(ctx context.Context, opts Options, reload ReloadFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	target, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", opts.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %q: %w", filepath.Dir(target), err)
	}

	opts.Logger.Info("watching dataset", "path", target, "debounce", opts.Debounce)

	debouncer := NewDebouncer(opts.Debounce, opts.Logger, func(path string) {
		opts.Logger.Info("dataset changed", "path", path)
		if err := reload(ctx); err != nil {
			opts.Logger.Error("reload failed", "path", path, "error", err)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			opts.Logger.Info("watcher stopped", "path", target)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event, target) {
				continue
			}
			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// isRelevant keeps content-changing events on the target file.
func isRelevant(event fsnotify.Event, target string) bool {
	if event.Op == 0 {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == target
}
