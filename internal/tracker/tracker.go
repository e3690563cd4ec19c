// Package tracker records which phase created each IR node.
//
// Two interchangeable strategies implement the Tracker interface: an
// external side table (identity-keyed concurrent map) and an embedded
// property (metadata attached to the node itself). The strategy is chosen
// once at process start via config and never switched at runtime; each
// compilation event gets its own tracker instance of that strategy via
// Factory. Callers depend only on the interface and must observe
// identical semantics from both strategies.
package tracker

import (
	"fmt"
	"log/slog"

	"github.com/phaseflow/phaseflow/internal/ir"
)

// Strategy names an attribution storage strategy.
type Strategy string

const (
	// StrategySideTable stores attributions in a concurrent map owned by
	// the tracker, keyed by node identity. Memory is bounded to live plus
	// recently-deleted nodes via Forget.
	StrategySideTable Strategy = "sidetable"

	// StrategyProperty stores attributions as node metadata through the
	// host's InfoNode capability. O(k) per lookup in the number of
	// metadata keys on the node; only acceptable while k stays small.
	StrategyProperty Strategy = "property"
)

// Tracker is the pluggable node-origin attribution store.
//
// Thread-safety: all methods are safe for concurrent use. RecordCreator
// and StampNew may race with LookupCreator from parallel phase-boundary
// calls of the same compilation.
type Tracker interface {
	// EnableTracking performs the tracker's one-time initialization.
	// Idempotent; invoked when the tracker is bound to its compilation
	// event, before any of the event's nodes are observed.
	EnableTracking()

	// RecordCreator associates identity with the node, replacing any
	// prior association. A node keeps only its most recent attribution.
	RecordCreator(n ir.Node, identity ir.PhaseIdentity)

	// LookupCreator returns the recorded creator identity.
	//
	// Fails with ErrUnrecorded if the node was never stamped (callers map
	// this to the NoPhase sentinel) or with a StaleError wrapping ErrStale
	// if the node's identity appears reused, deleted, or inconsistent
	// (callers map this to DeletedPhase and log).
	LookupCreator(n ir.Node) (ir.PhaseIdentity, error)

	// StampNew records identity for every node in the snapshot that has
	// no prior attribution. Nodes already attributed are left untouched:
	// first writer wins across the node's lifetime, and since StampNew
	// runs once per completed phase, "first writer" means "the phase that
	// introduced the node".
	StampNew(g ir.Graph, identity ir.PhaseIdentity)

	// Forget discards the attribution for a node the host reports
	// deleted. Subsequent lookups for the same identity fail stale until
	// the identity is legitimately reused by RecordCreator or StampNew.
	Forget(n ir.Node)
}

// Factory constructs independent trackers of one strategy. Each
// compilation event owns its own tracker: node identity is only stable
// within one compilation, so attribution state shared across events would
// read one event's stamps through another event's reused node IDs.
type Factory func() Tracker

// NewFactory returns the factory for the given strategy. The strategy is
// validated here, once, so factory calls cannot fail.
func NewFactory(s Strategy, log *slog.Logger) (Factory, error) {
	if log == nil {
		log = slog.Default()
	}
	switch s {
	case StrategySideTable:
		return func() Tracker { return &SideTable{log: log} }, nil
	case StrategyProperty:
		return func() Tracker { return &Property{log: log} }, nil
	default:
		return nil, fmt.Errorf("unknown tracker strategy %q", s)
	}
}

// New constructs a single tracker for the given strategy.
func New(s Strategy, log *slog.Logger) (Tracker, error) {
	f, err := NewFactory(s, log)
	if err != nil {
		return nil, err
	}
	return f(), nil
}
