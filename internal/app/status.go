package app

import "errors"

// State is the page lifecycle stage.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Status messages shown on the page.
const (
	MessageLoading = "Loading…"
	MessageReady   = "Ready"
)

// Status is the page status line.
type Status struct {
	State   State  `json:"state"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
	Dataset string `json:"dataset,omitempty"`
	Records int    `json:"records"`

	// LastError is the most recent failed reload. The page keeps serving
	// the previous records while it is set.
	LastError string `json:"last_error,omitempty"`
}

// Ready reports whether the page has records installed.
func (s Status) Ready() bool {
	return s.State == StateReady
}

// ErrNotReady is returned by Select before the first records are installed.
var ErrNotReady = errors.New("page not ready")

func loadingStatus(source string) Status {
	return Status{State: StateLoading, Message: MessageLoading, Source: source}
}

func errorStatus(source string, err error) Status {
	return Status{State: StateError, Message: "Error: " + err.Error(), Source: source}
}
