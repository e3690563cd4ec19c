// Package report defines the serialized artifact contract for finished
// dependency matrices and the sinks that receive them.
//
// One UTF-8 text artifact is produced per finished compilation event,
// written exactly once, named by that event. Layout:
//
//	<phase kind>            one per line, insertion order, sentinels first
//	                        blank separator line
//	<row>\t<col>\t<seenNodes>\t<totalNodesInPhase>\t<phaseInvocations>
//	                        one line per (row, column) pair over the full
//	                        phase index, rows then columns in index order
//
// Separate visualization tools consume this layout; it is a contract.
package report

import "github.com/phaseflow/phaseflow/internal/ir"

// Report is the structured form of one artifact.
type Report struct {
	// Event tags the compilation event the report belongs to. Empty in
	// freshly drained reports: the event identity travels next to the
	// artifact (filename, database key), not inside it.
	Event string

	// Phases is the row/column index in insertion order, sentinels first.
	Phases []ir.PhaseKind

	// Cells covers the full Phases x Phases rectangle in index order,
	// zero counters included.
	Cells []Cell
}

// Cell is one (consuming row, creating column) counter triple.
type Cell struct {
	Row ir.PhaseKind
	Col ir.PhaseKind

	SeenNodes         uint64
	TotalNodesInPhase uint64
	PhaseInvocations  uint64
}

// Sink receives one finished artifact per compilation event.
//
// Sink errors are reported to the caller for logging but must never
// propagate into the host compilation: instrumentation is best-effort.
type Sink interface {
	Write(event string, artifact []byte) error
}
