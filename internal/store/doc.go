// Package store provides SQLite-backed durable storage for the page's
// event log.
//
// The log is append-only:
//   - Events: every selection and record replacement the engine processed
//   - Notifications: every selection change the store mediator delivered
//   - Datasets: each distinct record set, by table identity, so a log can
//     be replayed without the original dataset file
//
// # Critical Patterns
//
// Logical Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Events and notifications share one clock, so seq is unique across
//     both tables and a merged timeline is a sort by seq
//
// Idempotent Writes
//   - Every insert uses ON CONFLICT DO NOTHING
//   - Writing the same row twice is harmless
//
// Deterministic Reads
//   - All queries order by seq ASC
package store
