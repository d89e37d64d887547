package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/regionplot/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	FlowToken string
}

// TraceEvent is one entry of a flow timeline.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Type   string `json:"type"` // "event" or "notification"
	Kind   string `json:"kind,omitempty"`
	Source string `json:"source,omitempty"`
	Origin string `json:"origin,omitempty"`
	Value   string `json:"value,omitempty"`
	Dataset string `json:"dataset,omitempty"`
	Records int    `json:"records,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TraceResult holds the timeline of one flow.
type TraceResult struct {
	FlowToken string       `json:"flow_token"`
	Timeline  []TraceEvent `json:"timeline"`
	Stats     TraceStats   `json:"stats"`
}

// TraceStats summarizes a flow.
type TraceStats struct {
	Events        int  `json:"events"`
	Notifications int  `json:"notifications"`
	Failed        bool `json:"failed"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the timeline of a flow",
		Long: `Show what one user action caused: the event and every selection
change it propagated, in sequence order. Without --flow, list the flows
in the log.

Examples:
  regionplot trace --db events.db
  regionplot trace --db events.db --flow 0190f5c2-...
  regionplot trace --db events.db --flow 0190f5c2-... --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrace(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.FlowToken, "flow", "", "flow token to trace")
	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions) error {
	ctx := cmd.Context()
	f := newFormatter(cmd, opts.RootOptions)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.FlowToken == "" {
		flows, err := st.Flows(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list flows", err)
		}
		return f.Report(flows, func(w io.Writer) { printFlows(w, flows) })
	}

	events, notes, err := st.ReadFlow(ctx, opts.FlowToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read flow", err)
	}
	result := buildTrace(opts.FlowToken, events, notes)
	return f.Report(result, func(w io.Writer) { printTrace(w, result) })
}

func buildTrace(flow string, events []store.EventRecord, notes []store.NotificationRecord) TraceResult {
	result := TraceResult{FlowToken: flow, Timeline: []TraceEvent{}}
	for _, ev := range events {
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:     ev.Seq,
			Type:    "event",
			Kind:    ev.Type,
			Source:  ev.Source,
			Value:   ev.Value,
			Dataset: ev.Dataset,
			Records: ev.RecordCount,
			Error:   ev.Error,
		})
		if ev.Error != "" {
			result.Stats.Failed = true
		}
	}
	for _, n := range notes {
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:    n.Seq,
			Type:   "notification",
			Origin: n.Origin,
			Value:  n.Value,
		})
	}
	sort.SliceStable(result.Timeline, func(i, j int) bool {
		return result.Timeline[i].Seq < result.Timeline[j].Seq
	})
	result.Stats.Events = len(events)
	result.Stats.Notifications = len(notes)
	return result
}

func printTrace(w io.Writer, r TraceResult) {
	if len(r.Timeline) == 0 {
		fmt.Fprintf(w, "No events found for flow: %s\n", r.FlowToken)
		return
	}
	fmt.Fprintf(w, "Flow: %s\n\n", r.FlowToken)
	for _, ev := range r.Timeline {
		switch ev.Type {
		case "event":
			line := fmt.Sprintf("[seq=%d] %s (%s)", ev.Seq, ev.Kind, ev.Source)
			if ev.Value != "" {
				line += fmt.Sprintf(" %q", ev.Value)
			}
			if ev.Dataset != "" {
				line += fmt.Sprintf(" %d records %s", ev.Records, shortIdentity(ev.Dataset))
			}
			if ev.Error != "" {
				line += " ✗ " + ev.Error
			}
			fmt.Fprintln(w, line)
		default:
			fmt.Fprintf(w, "  [seq=%d] %s → %q\n", ev.Seq, ev.Origin, ev.Value)
		}
	}
	fmt.Fprintf(w, "\n%d events, %d notifications\n", r.Stats.Events, r.Stats.Notifications)
}

func printFlows(w io.Writer, flows []store.FlowSummary) {
	if len(flows) == 0 {
		fmt.Fprintln(w, "No flows recorded")
		return
	}
	for _, fl := range flows {
		fmt.Fprintf(w, "%s  seq %d-%d  %d events  %d notifications\n",
			fl.Flow, fl.FirstSeq, fl.LastSeq, fl.Events, fl.Notifications)
	}
}

func shortIdentity(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
