package engine

import (
	"sync"

	"github.com/roach88/regionplot/internal/table"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeSelect represents a user choosing a category.
	EventTypeSelect EventType = iota + 1
	// EventTypeReplaceRecords represents a new record set arriving.
	EventTypeReplaceRecords
)

// String returns the name used in logs and the event log.
func (t EventType) String() string {
	switch t {
	case EventTypeSelect:
		return "select"
	case EventTypeReplaceRecords:
		return "replace_records"
	}
	return "unknown"
}

// ParseEventType is the inverse of EventType.String.
// Returns 0 for unrecognized names.
func ParseEventType(s string) EventType {
	switch s {
	case "select":
		return EventTypeSelect
	case "replace_records":
		return EventTypeReplaceRecords
	}
	return 0
}

// Event is one unit of work for the Run loop.
type Event struct {
	Type EventType

	// Seq is stamped by the Run loop when processing starts.
	Seq int64

	// Flow is stamped at enqueue time when empty.
	Flow string

	// Source names the submitter, e.g. "http", "watch", "startup".
	Source string

	// Value is the chosen category (EventTypeSelect).
	Value string

	// Records is the replacement record set (EventTypeReplaceRecords).
	Records *table.RecordSet

	// Dataset is the snapshot identity of Records, if known.
	Dataset string

	done chan error // Set by Submit; receives the processing result
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so submitters never block on the Run loop.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking; the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Release the slot's record set for GC.
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed once the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
