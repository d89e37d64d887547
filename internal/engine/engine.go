package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Handler applies events to the page's components.
// Methods are only ever called from the Run goroutine.
type Handler interface {
	Select(ctx context.Context, ev Event) error
	ReplaceRecords(ctx context.Context, ev Event) error
}

// Engine is the single-writer event loop.
//
// Thread-safety model:
//   - Enqueue(), Submit(), NewFlow(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Engine struct {
	handler Handler
	clock   Sequencer
	queue   *eventQueue
	flowGen FlowTokenGenerator
	logger  *slog.Logger

	processed atomic.Int64
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithClock sets the clock used to stamp events. Sharing the clock with
// the selection store gives events and notifications one ordering.
func WithClock(c Sequencer) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine delivering events to handler.
func New(handler Handler, flowGen FlowTokenGenerator, opts ...EngineOption) *Engine {
	e := &Engine{
		handler: handler,
		clock:   NewClock(),
		queue:   newEventQueue(),
		flowGen: flowGen,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Clock returns the engine's clock.
func (e *Engine) Clock() Sequencer {
	return e.clock
}

// NewFlow generates a new flow token.
// Thread-safe: may be called from any goroutine.
func (e *Engine) NewFlow() string {
	return e.flowGen.Generate()
}

// Enqueue submits an event for processing by the Run loop without waiting.
// A flow token is assigned if ev.Flow is empty.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	if ev.Flow == "" {
		ev.Flow = e.NewFlow()
	}
	return e.queue.Enqueue(ev)
}

// Submit enqueues ev and waits until the Run loop has processed it.
// Returns the handler's error, a RuntimeError if the event was rejected
// or the engine stopped, or ctx.Err() if ctx ends first.
func (e *Engine) Submit(ctx context.Context, ev Event) error {
	if ev.Flow == "" {
		ev.Flow = e.NewFlow()
	}
	done := make(chan error, 1)
	ev.done = done

	if !e.queue.Enqueue(ev) {
		return newStoppedError(ev.Flow)
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Processed returns the number of events the Run loop has handled.
func (e *Engine) Processed() int64 {
	return e.processed.Load()
}

// Run starts the single-writer event loop.
// Blocks until ctx is cancelled or Stop() is called. After Stop, events
// already queued are processed before Run returns; after cancellation they
// are failed with ENGINE_STOPPED.
//
// ERROR HANDLING: On event processing failure, the error is logged with
// full event context and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		if ctx.Err() != nil {
			return e.cancelled(ctx)
		}

		event, ok := e.queue.TryDequeue()
		if ok {
			event.Seq = e.clock.Next()
			err := e.processEvent(ctx, event)
			if err != nil {
				e.logEventError(event, err)
			}
			e.processed.Add(1)
			if event.done != nil {
				event.done <- err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return e.cancelled(ctx)

		case <-e.queue.Wait():
			// The signal channel closes with the queue; an empty closed
			// queue means Stop was called and everything is drained.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Closes the event queue, which will cause Run() to return once drained.
func (e *Engine) Stop() {
	e.queue.Close()
}

// processEvent validates an event and routes it to the handler.
// CRITICAL: Called only from Run() goroutine.
func (e *Engine) processEvent(ctx context.Context, event Event) error {
	e.logger.Debug("processing event",
		"type", event.Type.String(),
		"seq", event.Seq,
		"flow", event.Flow,
		"source", event.Source,
	)

	switch event.Type {
	case EventTypeSelect:
		if event.Value == "" {
			return &RuntimeError{
				Code:      ErrCodeInvalidEvent,
				Message:   "select event missing value",
				FlowToken: event.Flow,
			}
		}
		if err := e.handler.Select(ctx, event); err != nil {
			return fmt.Errorf("select %q: %w", event.Value, err)
		}
		return nil

	case EventTypeReplaceRecords:
		if event.Records == nil {
			return &RuntimeError{
				Code:      ErrCodeInvalidEvent,
				Message:   "replace_records event missing records",
				FlowToken: event.Flow,
			}
		}
		if err := e.handler.ReplaceRecords(ctx, event); err != nil {
			return fmt.Errorf("replace records: %w", err)
		}
		return nil

	default:
		return &RuntimeError{
			Code:      ErrCodeUnknownEvent,
			Message:   fmt.Sprintf("unknown event type: %d", event.Type),
			FlowToken: event.Flow,
		}
	}
}

func (e *Engine) cancelled(ctx context.Context) error {
	e.logger.Info("engine stopping: context cancelled")
	e.queue.Close()
	e.failPending()
	return ctx.Err()
}

// failPending releases Submit callers whose events will never run.
func (e *Engine) failPending() {
	for {
		event, ok := e.queue.TryDequeue()
		if !ok {
			return
		}
		if event.done != nil {
			event.done <- newStoppedError(event.Flow)
		}
	}
}

func (e *Engine) logEventError(event Event, err error) {
	attrs := []any{
		"error", err,
		"type", event.Type.String(),
		"seq", event.Seq,
		"flow", event.Flow,
		"source", event.Source,
	}
	switch event.Type {
	case EventTypeSelect:
		attrs = append(attrs, "value", event.Value)
	case EventTypeReplaceRecords:
		if event.Records != nil {
			attrs = append(attrs, "records", event.Records.Len())
		}
	}
	e.logger.Error("event processing failed", attrs...)
}
