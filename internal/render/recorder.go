package render

import (
	"sync"

	"github.com/roach88/regionplot/internal/table"
)

// Call is one recorded render request.
type Call struct {
	Category string
	Records  []table.Record
}

// Recorder is a Renderer that remembers every request. Used in tests and
// by the scenario harness.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// Render records the request.
func (r *Recorder) Render(visible table.RecordSet, category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Category: category, Records: visible.Records()})
}

// Calls returns a copy of every recorded request in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Len returns the number of recorded requests.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Last returns the most recent request and whether there was one.
func (r *Recorder) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset forgets all recorded requests.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
