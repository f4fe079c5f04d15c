// Package store provides a SQLite-backed journal of planned sync runs.
//
// The journal is append-only:
//   - Runs: one row per planning run, ordered by seq
//   - Plans: per-entity sync options for a run, as canonical JSON
//   - Records: each resolved record with its content hash
//
// Planning never reads the journal. It exists for audit and for comparing
// what successive runs would have pushed.
//
// # Critical Patterns
//
// Deterministic Query Results
//   - Runs are listed by seq, plans by position, records by idx
//   - Stored JSON is RFC 8785 canonical, so equal records compare equal
//     as text and share a hash
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
