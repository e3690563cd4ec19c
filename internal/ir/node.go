package ir

import "iter"

// Node is a single IR value or instruction owned by the host compiler.
// phaseflow references nodes, it never owns them.
//
// Identity contract: NodeID is stable for the lifetime of one compilation.
// The host may delete a node from its graph at any time; trackers must
// tolerate nodes they never saw or that have since vanished.
type Node interface {
	NodeID() uint64
}

// Graph is a snapshot of the live node population of one compilation,
// handed to the phase-boundary hooks by the host.
//
// Nodes must yield every currently-live node exactly once. NodeCount must
// equal the number of nodes the iterator yields for the same snapshot.
type Graph interface {
	Nodes() iter.Seq[Node]
	NodeCount() int
}
