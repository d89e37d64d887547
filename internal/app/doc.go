// Package app assembles the regionplot page.
//
// A Page owns one selection controller, the renderer behind its chart, and
// the engine that serializes every change to them. Startup and reload load
// a dataset, normalize it outside the event loop, and submit the resulting
// record set as a replace_records event. User choices arrive as select
// events. Every processed event and every selection notification is written
// to the optional event log, which Replay can later re-run.
package app
