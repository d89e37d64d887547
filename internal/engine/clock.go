package engine

import "sync/atomic"

// Sequencer hands out strictly increasing sequence numbers.
// *Clock is the production implementation.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock for event ordering.
//
// Events and selection notifications are stamped from one Clock, so a
// trace sorted by seq is the order things happened in.
//
// Thread-safety: Clock is safe for concurrent use. Enqueue stamps events
// from caller goroutines while the Run loop stamps notifications.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start.
// Used when resuming an existing event log.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
