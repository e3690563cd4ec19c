package tracker

import (
	"log/slog"
	"sync"

	"github.com/phaseflow/phaseflow/internal/ir"
)

// SideTable is the external side-table tracker strategy.
//
// Attributions live in a concurrent map keyed by node identity, owned by
// the tracker. Node identity is only stable within one compilation, so a
// SideTable must never outlive the compilation event it was created for:
// the event scope creates one per event and drops it when the event ends,
// bounding memory to the live plus recently-deleted nodes of in-flight
// compilations.
//
// Forget replaces an entry with a tombstone so a lookup for a deleted
// node fails stale instead of silently reading a reused identity.
type SideTable struct {
	once    sync.Once
	log     *slog.Logger
	entries sync.Map // uint64 -> sideEntry
}

// sideEntry is one attribution slot. A deleted slot keeps its key so that
// identity reuse is detectable until the next RecordCreator.
type sideEntry struct {
	identity ir.PhaseIdentity
	deleted  bool
}

// EnableTracking implements Tracker. The zero-value map is ready to use,
// so this only announces activation once.
func (t *SideTable) EnableTracking() {
	t.once.Do(func() {
		t.log.Debug("node origin tracking enabled", "strategy", StrategySideTable)
	})
}

// RecordCreator implements Tracker. Overwrites any prior association,
// including tombstones left by Forget.
func (t *SideTable) RecordCreator(n ir.Node, identity ir.PhaseIdentity) {
	t.entries.Store(n.NodeID(), sideEntry{identity: identity})
}

// LookupCreator implements Tracker.
func (t *SideTable) LookupCreator(n ir.Node) (ir.PhaseIdentity, error) {
	v, ok := t.entries.Load(n.NodeID())
	if !ok {
		return ir.PhaseIdentity{}, ErrUnrecorded
	}
	e := v.(sideEntry)
	if e.deleted {
		return ir.PhaseIdentity{}, &StaleError{NodeID: n.NodeID(), Reason: "node was forgotten but is still being looked up"}
	}
	return e.identity, nil
}

// StampNew implements Tracker. Tombstoned identities count as absent: a
// legitimately reused identity gets a fresh attribution.
func (t *SideTable) StampNew(g ir.Graph, identity ir.PhaseIdentity) {
	for n := range g.Nodes() {
		id := n.NodeID()
		if v, ok := t.entries.Load(id); ok && !v.(sideEntry).deleted {
			continue // already attributed, first writer wins
		}
		t.entries.Store(id, sideEntry{identity: identity})
	}
}

// Forget implements Tracker. Leaves a tombstone so lookups for the dead
// identity fail stale rather than unrecorded.
func (t *SideTable) Forget(n ir.Node) {
	t.entries.Store(n.NodeID(), sideEntry{deleted: true})
}
