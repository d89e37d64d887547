package harness

import (
	"github.com/roach88/regionplot/internal/app"
	"github.com/roach88/regionplot/internal/selection"
)

// Trace entry types.
const (
	TraceTypeEvent        = "event"
	TraceTypeNotification = "notification"
)

// TraceEvent is one logged event or notification, in seq order.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Flow string `json:"flow"`
	Type string `json:"type"` // "event" or "notification"

	// Events.
	Kind    string `json:"kind,omitempty"` // select or replace_records
	Source  string `json:"source,omitempty"`
	Dataset string `json:"dataset,omitempty"`
	Records int    `json:"records,omitempty"`
	Error   string `json:"error,omitempty"`

	// Both: the selected value.
	Value string `json:"value,omitempty"`

	// Notifications.
	Origin string `json:"origin,omitempty"`
}

// RenderCall summarizes one chart render.
type RenderCall struct {
	Category string `json:"category"`
	Records  int    `json:"records"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds every logged event and notification in seq order.
	Trace []TraceEvent `json:"trace"`

	// Renders holds every chart render in order.
	Renders []RenderCall `json:"renders"`

	// Final is the controller state after the last step.
	Final selection.Snapshot `json:"final"`

	// Status is the page status after the last step.
	Status app.Status `json:"status"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Renders: []RenderCall{},
		Errors:  []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Notifications returns the notification entries of the trace, restricted
// to origin when it is non-empty.
func (r *Result) Notifications(origin string) []TraceEvent {
	var out []TraceEvent
	for _, ev := range r.Trace {
		if ev.Type == TraceTypeNotification && (origin == "" || ev.Origin == origin) {
			out = append(out, ev)
		}
	}
	return out
}
