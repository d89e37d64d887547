// Package engine runs the single-writer event loop that drives the page.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every state change of the selector, the chart and the selection store
// happens on the goroutine that calls Engine.Run. HTTP handlers, the
// dataset watcher and the CLI never touch components directly; they submit
// events. This ensures:
// - Notifications are processed one at a time in the order raised
// - Rendering finishes before the next event is looked at
// - Components need no locks
//
// Event Processing Flow:
// 1. Events are enqueued to a FIFO queue (selections or record replacements)
// 2. Engine.Run() dequeues events one at a time
// 3. processEvent() validates and routes to the Handler
// 4. Submit() callers are released with the handler's result
//
// CRITICAL PATTERNS:
//
// Logical Clock
// Every event is stamped with a monotonic seq from Clock.Next() when it is
// enqueued. Wall-clock time is never used for ordering.
//
// Flow Tokens
// Every event carries a flow token (UUIDv7 in production, fixed in tests)
// that correlates it with the notifications it causes.
package engine
