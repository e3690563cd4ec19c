// Package testutil provides deterministic fixtures for phaseflow tests:
// in-memory graphs and nodes, and a capturing report sink.
package testutil

import (
	"iter"
	"sync"

	"github.com/phaseflow/phaseflow/internal/ir"
)

// Node is an in-memory IR node implementing ir.InfoNode, so it works with
// both tracker strategies.
//
// Thread-safety: metadata access is guarded by a mutex; the O(k) slice
// storage mirrors the cost contract of real host metadata.
type Node struct {
	id uint64

	mu   sync.Mutex
	info []infoEntry
}

type infoEntry struct {
	key   *ir.InfoKey
	value any
}

// NodeID implements ir.Node.
func (n *Node) NodeID() uint64 {
	return n.id
}

// SetInfo implements ir.InfoNode.
func (n *Node) SetInfo(key *ir.InfoKey, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.info {
		if n.info[i].key == key {
			n.info[i].value = value
			return
		}
	}
	n.info = append(n.info, infoEntry{key: key, value: value})
}

// Info implements ir.InfoNode.
func (n *Node) Info(key *ir.InfoKey) (any, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.info {
		if n.info[i].key == key {
			return n.info[i].value, true
		}
	}
	return nil, false
}

// InfoCount returns the number of distinct metadata keys on the node.
func (n *Node) InfoCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.info)
}

// Graph is a mutable in-memory node population implementing ir.Graph.
// Node IDs are assigned sequentially from 1 for reproducible tests.
//
// Thread-safety: safe for concurrent use; Nodes iterates over a snapshot
// taken when the iterator is created.
type Graph struct {
	mu     sync.Mutex
	nextID uint64
	nodes  []*Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddNodes creates n new nodes with fresh IDs and returns them.
func (g *Graph) AddNodes(n int) []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	added := make([]*Node, 0, n)
	for range n {
		g.nextID++
		node := &Node{id: g.nextID}
		g.nodes = append(g.nodes, node)
		added = append(added, node)
	}
	return added
}

// Remove deletes a node from the population. No-op if absent.
func (g *Graph) Remove(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, cur := range g.nodes {
		if cur == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			return
		}
	}
}

// RemoveLast deletes the most recently added n nodes and returns them.
func (g *Graph) RemoveLast(n int) []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n > len(g.nodes) {
		n = len(g.nodes)
	}
	removed := g.nodes[len(g.nodes)-n:]
	g.nodes = g.nodes[:len(g.nodes)-n]
	return removed
}

// Nodes implements ir.Graph.
func (g *Graph) Nodes() iter.Seq[ir.Node] {
	g.mu.Lock()
	snapshot := make([]*Node, len(g.nodes))
	copy(snapshot, g.nodes)
	g.mu.Unlock()

	return func(yield func(ir.Node) bool) {
		for _, n := range snapshot {
			if !yield(n) {
				return
			}
		}
	}
}

// NodeCount implements ir.Graph.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}
