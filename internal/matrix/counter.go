package matrix

import "sync/atomic"

// Counter is one matrix cell: three monotonically increasing counters for
// a (consuming row phase, creating column phase) pair.
//
// Cells are mutated by concurrent Update calls holding the drain lock in
// shared mode, so every field is atomic.
//
// Invariant: seen <= total for the same row at all times, because total
// is bumped by the whole graph size for every update that bumped seen.
type Counter struct {
	seen        atomic.Uint64
	total       atomic.Uint64
	invocations atomic.Uint64
}

// SeenNodes is the number of nodes attributed to this cell's column
// observed while the row's phase was entered.
func (c *Counter) SeenNodes() uint64 { return c.seen.Load() }

// TotalNodesInPhase is the graph's total node count each time the row's
// phase ran, summed once per run since this cell came into existence.
func (c *Counter) TotalNodesInPhase() uint64 { return c.total.Load() }

// PhaseInvocations is how many times the row's phase ran since this cell
// came into existence.
func (c *Counter) PhaseInvocations() uint64 { return c.invocations.Load() }

func (c *Counter) addSeen(n uint64)  { c.seen.Add(n) }
func (c *Counter) addTotal(n uint64) { c.total.Add(n) }
func (c *Counter) addInvocation()    { c.invocations.Add(1) }
