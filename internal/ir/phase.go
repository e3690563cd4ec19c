package ir

import "fmt"

// PhaseKind identifies what kind of transformation ran, not a specific run.
// Kinds are stable for the lifetime of a process. Multiple invocations of
// the same kind within one compilation share a single matrix row.
type PhaseKind string

// Sentinel phase kinds. Both are pre-seeded as the first two entries of
// every matrix phase index and never absent from a report.
const (
	// NoPhase is attributed to nodes that existed before tracking began
	// for the current compilation (no recorded creator). Not an error.
	NoPhase PhaseKind = "<no-phase>"

	// DeletedPhase is attributed when an origin lookup fails because the
	// node's identity appears reused or inconsistent. An error condition:
	// always logged, never silently folded into NoPhase.
	DeletedPhase PhaseKind = "<deleted-phase>"
)

// IsSentinel reports whether k is one of the reserved sentinel kinds.
func (k PhaseKind) IsSentinel() bool {
	return k == NoPhase || k == DeletedPhase
}

// PhaseIdentity names one specific invocation of a transformation phase
// within one compilation.
//
// Sequence numbers are strictly increasing within a compilation and reset
// to 0 at compilation start. They need not be unique across concurrently
// running compilations - each compilation owns its own matrix.
//
// PhaseIdentity is comparable; equality is field-wise.
type PhaseIdentity struct {
	Kind     PhaseKind
	Sequence int
}

// String renders the identity as "kind#sequence" for logs.
func (id PhaseIdentity) String() string {
	return fmt.Sprintf("%s#%d", id.Kind, id.Sequence)
}
