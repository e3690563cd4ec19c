package tracker

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/phaseflow/phaseflow/internal/ir"
)

// creatorKey is the single metadata key phaseflow attaches to a node.
// One key per node keeps the host's O(k) metadata cost at k=1.
var creatorKey = ir.NewInfoKey("phaseflow/creator")

// forgotten marks a node the host reported deleted. Distinct from absence
// so that post-deletion lookups fail stale, not unrecorded.
type forgotten struct{}

// Property is the embedded-property tracker strategy.
//
// Attributions are stored on the node itself through the host's InfoNode
// metadata capability. Nodes that do not implement InfoNode cannot carry
// an attribution; looking one up fails stale so the matrix charges the
// DeletedPhase sentinel instead of mistaking the node for pre-existing.
type Property struct {
	once sync.Once
	log  *slog.Logger
}

// EnableTracking implements Tracker.
func (t *Property) EnableTracking() {
	t.once.Do(func() {
		t.log.Debug("node origin tracking enabled", "strategy", StrategyProperty)
	})
}

// RecordCreator implements Tracker. A node without metadata capability is
// skipped; its lookups will fail stale.
func (t *Property) RecordCreator(n ir.Node, identity ir.PhaseIdentity) {
	in, ok := n.(ir.InfoNode)
	if !ok {
		t.log.Debug("node does not support metadata, attribution dropped",
			"node", n.NodeID(),
			"phase", identity,
		)
		return
	}
	in.SetInfo(creatorKey, identity)
}

// LookupCreator implements Tracker.
func (t *Property) LookupCreator(n ir.Node) (ir.PhaseIdentity, error) {
	in, ok := n.(ir.InfoNode)
	if !ok {
		return ir.PhaseIdentity{}, &StaleError{NodeID: n.NodeID(), Reason: "node does not support metadata"}
	}
	v, ok := in.Info(creatorKey)
	if !ok {
		return ir.PhaseIdentity{}, ErrUnrecorded
	}
	switch val := v.(type) {
	case ir.PhaseIdentity:
		return val, nil
	case forgotten:
		return ir.PhaseIdentity{}, &StaleError{NodeID: n.NodeID(), Reason: "node was forgotten but is still being looked up"}
	default:
		return ir.PhaseIdentity{}, &StaleError{NodeID: n.NodeID(), Reason: fmt.Sprintf("creator metadata has unexpected type %T", v)}
	}
}

// StampNew implements Tracker.
func (t *Property) StampNew(g ir.Graph, identity ir.PhaseIdentity) {
	for n := range g.Nodes() {
		in, ok := n.(ir.InfoNode)
		if !ok {
			continue
		}
		if v, ok := in.Info(creatorKey); ok {
			if _, isID := v.(ir.PhaseIdentity); isID {
				continue // already attributed, first writer wins
			}
		}
		in.SetInfo(creatorKey, identity)
	}
}

// Forget implements Tracker. Marks the node's slot so that lookups after
// deletion fail stale.
func (t *Property) Forget(n ir.Node) {
	if in, ok := n.(ir.InfoNode); ok {
		in.SetInfo(creatorKey, forgotten{})
	}
}
