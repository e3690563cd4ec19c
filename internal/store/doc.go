// Package store provides SQLite-backed persistence for finished
// dependency-matrix reports, so tooling can query across many
// compilation events.
//
// The store holds three tables:
//   - events: one row per imported compilation event, with the raw
//     artifact text for byte-faithful round trips
//   - phases: the event's phase index in insertion order
//   - cells: nonzero matrix cells (zero cells are implied by the index
//     and reconstructed on read)
//
// The store is strictly downstream of the engine: the collector writes
// through a report.Sink, and a failed write never reaches the host
// compilation.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// All reads order by explicit columns so results are deterministic.
package store
