// Package store provides SQLite-backed history of suite runs.
//
// Every harness run is recorded as one suite_runs row with its case_results
// and step_results. Rows are written once inside a transaction and never
// updated.
//
// # Ordering
//
//   - Runs list newest first: ORDER BY started_at DESC, id DESC
//   - Cases and steps keep execution order: ORDER BY seq ASC
//
// Run IDs are UUIDv7 by default, so IDs of runs recorded in the same
// instant still sort by creation.
//
// # Schema
//
// schema.sql creates the version 0 tables; later changes are migrations
// tracked in PRAGMA user_version and applied by Open in a single
// transaction. A database written by a newer version is refused. The
// connection runs in WAL mode with foreign keys enforced.
//
// Step arguments and run settings are stored as canonical JSON (sorted keys,
// NFC-normalised strings) so equal inputs always produce equal rows.
package store
