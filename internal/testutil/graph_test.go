package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phaseflow/phaseflow/internal/ir"
)

func TestGraph_SequentialIDs(t *testing.T) {
	g := NewGraph()
	nodes := g.AddNodes(3)
	require.Len(t, nodes, 3)
	assert.Equal(t, uint64(1), nodes[0].NodeID())
	assert.Equal(t, uint64(2), nodes[1].NodeID())
	assert.Equal(t, uint64(3), nodes[2].NodeID())

	// IDs keep growing after removal; they are never reused.
	g.Remove(nodes[2])
	assert.Equal(t, uint64(4), g.AddNodes(1)[0].NodeID())
}

func TestGraph_RemoveLast(t *testing.T) {
	g := NewGraph()
	nodes := g.AddNodes(3)

	removed := g.RemoveLast(2)
	require.Len(t, removed, 2)
	assert.Same(t, nodes[1], removed[0])
	assert.Same(t, nodes[2], removed[1])
	assert.Equal(t, 1, g.NodeCount())

	assert.Len(t, g.RemoveLast(5), 1, "removing more than present drains the graph")
	assert.Zero(t, g.NodeCount())
}

func TestGraph_NodesIteratesSnapshot(t *testing.T) {
	g := NewGraph()
	g.AddNodes(2)

	var seen int
	for range g.Nodes() {
		// Mutation during iteration must not affect the running iterator.
		g.AddNodes(1)
		seen++
	}
	assert.Equal(t, 2, seen)
	assert.Equal(t, 4, g.NodeCount())
}

func TestNode_InfoRoundtrip(t *testing.T) {
	g := NewGraph()
	n := g.AddNodes(1)[0]

	key := ir.NewInfoKey("k")
	other := ir.NewInfoKey("k") // same name, distinct key

	_, ok := n.Info(key)
	assert.False(t, ok)

	n.SetInfo(key, "v1")
	v, ok := n.Info(key)
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	_, ok = n.Info(other)
	assert.False(t, ok, "lookup is by key identity, not name")

	n.SetInfo(key, "v2")
	v, _ = n.Info(key)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 1, n.InfoCount(), "overwriting a key does not grow the slot list")
}

func TestCaptureSink_ExactlyOnce(t *testing.T) {
	s := NewCaptureSink()
	require.NoError(t, s.Write("evt", []byte("a")))
	assert.Error(t, s.Write("evt", []byte("b")))

	got, ok := s.Artifact("evt")
	require.True(t, ok)
	assert.Equal(t, "a", string(got))
	assert.Equal(t, 1, s.Len())
}

func TestCaptureSink_CopiesArtifact(t *testing.T) {
	s := NewCaptureSink()
	buf := []byte("original")
	require.NoError(t, s.Write("evt", buf))
	buf[0] = 'X'

	got, _ := s.Artifact("evt")
	assert.Equal(t, "original", string(got))
}
