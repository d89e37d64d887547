package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/regionplot/internal/engine"
	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/selection"
	"github.com/roach88/regionplot/internal/store"
	"github.com/roach88/regionplot/internal/table"
)

// LogReader reads a recorded event log. *store.Store satisfies it.
type LogReader interface {
	ReadEvents(ctx context.Context) ([]store.EventRecord, error)
	ReadNotifications(ctx context.Context) ([]store.NotificationRecord, error)
	ReadDataset(ctx context.Context, identity string) (store.DatasetRecord, error)
}

// ReplayResult compares a recorded run with its re-execution.
type ReplayResult struct {
	Events      int      `json:"events"`
	Recorded    int      `json:"recorded_notifications"`
	Replayed    int      `json:"replayed_notifications"`
	Final       string   `json:"final_selection"`
	Differences []string `json:"differences,omitempty"`
}

// Matched reports whether the replay reproduced the recorded trace.
func (r ReplayResult) Matched() bool {
	return len(r.Differences) == 0
}

// Replay re-runs every logged event, in seq order, against fresh
// components and compares the notifications they emit with the logged
// ones. Sequence numbers are not compared; flow, origin and value are.
//
// Record sets are restored from the logged dataset snapshots.
func Replay(ctx context.Context, log LogReader, logger *slog.Logger) (ReplayResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	events, err := log.ReadEvents(ctx)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	recorded, err := log.ReadNotifications(ctx)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	var flow string
	var replayed []selection.Notification
	st := selection.NewStore(
		selection.WithFlow(func() string { return flow }),
		selection.WithLogger(logger),
	)
	st.Tap(func(n selection.Notification) {
		replayed = append(replayed, n)
	})
	ctrl := selection.Bind(st,
		selection.NewSelector(logger),
		selection.NewChart(&render.Recorder{}, logger),
		logger,
	)
	defer ctrl.Close()

	result := ReplayResult{Events: len(events), Recorded: len(recorded)}
	datasets := make(map[string]table.RecordSet)

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		flow = ev.Flow

		var applyErr error
		switch engine.ParseEventType(ev.Type) {
		case engine.EventTypeSelect:
			applyErr = ctrl.UserSelect(ev.Value)

		case engine.EventTypeReplaceRecords:
			rs, ok := datasets[ev.Dataset]
			if !ok {
				d, err := log.ReadDataset(ctx, ev.Dataset)
				if err != nil {
					return result, fmt.Errorf("replay event %d: dataset %s: %w", ev.Seq, ev.Dataset, err)
				}
				rs, err = table.UnmarshalSnapshot(d.Snapshot)
				if err != nil {
					return result, fmt.Errorf("replay event %d: %w", ev.Seq, err)
				}
				datasets[ev.Dataset] = rs
			}
			applyErr = ctrl.ReplaceRecords(rs)

		default:
			return result, fmt.Errorf("replay event %d: unknown type %q", ev.Seq, ev.Type)
		}

		if (applyErr != nil) != (ev.Error != "") {
			result.Differences = append(result.Differences, fmt.Sprintf(
				"event %d (%s %q): recorded error %q, replayed error %v",
				ev.Seq, ev.Type, ev.Value, ev.Error, applyErr))
		}
	}

	result.Replayed = len(replayed)
	result.Final = st.Get()
	result.Differences = append(result.Differences, compareNotifications(recorded, replayed)...)

	logger.Info("replay finished",
		"events", result.Events,
		"recorded", result.Recorded,
		"replayed", result.Replayed,
		"differences", len(result.Differences))
	return result, nil
}

func compareNotifications(recorded []store.NotificationRecord, replayed []selection.Notification) []string {
	var diffs []string
	n := len(recorded)
	if len(replayed) > n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		switch {
		case i >= len(recorded):
			r := replayed[i]
			diffs = append(diffs, fmt.Sprintf("notification %d: extra %s=%q (flow %s)", i, r.Origin, r.Value, r.Flow))
		case i >= len(replayed):
			r := recorded[i]
			diffs = append(diffs, fmt.Sprintf("notification %d: missing %s=%q (flow %s)", i, r.Origin, r.Value, r.Flow))
		default:
			a, b := recorded[i], replayed[i]
			if a.Flow != b.Flow || a.Origin != b.Origin || a.Value != b.Value {
				diffs = append(diffs, fmt.Sprintf("notification %d: recorded %s=%q (flow %s), replayed %s=%q (flow %s)",
					i, a.Origin, a.Value, a.Flow, b.Origin, b.Value, b.Flow))
			}
		}
	}
	return diffs
}
