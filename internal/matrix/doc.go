// Package matrix implements the per-compilation phase dependency matrix.
//
// One Matrix exists per compilation event. Rows and columns are PhaseKind
// values; a cell counts how many nodes created by the column's phase were
// alive each time the row's phase ran.
//
// CONCURRENCY MODEL:
//
// Multiple phase-boundary calls of the same compilation may mutate one
// matrix concurrently (rare, but must be safe). The matrix is drained by
// at most one finalization call, which must observe a state no writer is
// mutating. This is achieved by using a reader/writer lock in the
// opposite direction from its conventional naming:
//
//   - Update acquires the lock in SHARED mode: writers proceed in
//     parallel, mutating cells through atomic counters.
//   - Dump acquires the lock in EXCLUSIVE mode: it waits for in-flight
//     writers to finish, then no new writer can start.
//
// Update uses a non-blocking TryRLock: if a drain holds the exclusive
// lock, the update is silently skipped, never queued or retried. The
// engine accepts incomplete data for the in-flight phase rather than
// ever blocking the compiler.
package matrix
