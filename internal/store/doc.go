// Package store provides a SQLite-backed journal of send runs.
//
// The journal is an audit trail, not the source of truth for "already sent":
// that role belongs to the plain-text sent-log in package sentlog. Every run
// gets a row in runs, and every item the orchestrator processes gets a row in
// attempts, whatever the outcome.
//
// # Ordering
//
// Attempts are ordered by (run_id, seq). seq is assigned by the orchestrator
// and increases by one per processed item, so reading a run back yields the
// exact processing order regardless of wall-clock resolution.
//
// # Database Configuration
//
//   - WAL mode: history can be read while a run is writing
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: attempts must reference a run
package store
