package tracker_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phaseflow/phaseflow/internal/ir"
	"github.com/phaseflow/phaseflow/internal/testutil"
	"github.com/phaseflow/phaseflow/internal/tracker"
)

// bareNode has an identity but no metadata capability, like host nodes
// that predate the instrumentation hooks.
type bareNode struct {
	id uint64
}

func (n *bareNode) NodeID() uint64 { return n.id }

func strategies() []tracker.Strategy {
	return []tracker.Strategy{tracker.StrategySideTable, tracker.StrategyProperty}
}

func newTracker(t *testing.T, s tracker.Strategy) tracker.Tracker {
	t.Helper()
	trk, err := tracker.New(s, slog.Default())
	require.NoError(t, err)
	trk.EnableTracking()
	return trk
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := tracker.New("ledger", slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger")

	_, err = tracker.NewFactory("ledger", slog.Default())
	assert.Error(t, err)
}

func TestNewFactory_TrackersAreIndependent(t *testing.T) {
	f, err := tracker.NewFactory(tracker.StrategySideTable, slog.Default())
	require.NoError(t, err)

	g1 := testutil.NewGraph()
	n1 := g1.AddNodes(1)[0]
	a := f()
	a.EnableTracking()
	a.RecordCreator(n1, ir.PhaseIdentity{Kind: "Canonicalizer", Sequence: 0})

	// A second tracker sees a different compilation whose node IDs
	// collide with the first; it must know nothing about them.
	g2 := testutil.NewGraph()
	n2 := g2.AddNodes(1)[0]
	require.Equal(t, n1.NodeID(), n2.NodeID())

	b := f()
	b.EnableTracking()
	_, err = b.LookupCreator(n2)
	assert.ErrorIs(t, err, tracker.ErrUnrecorded,
		"trackers from one factory share no attribution state")
}

func TestTracker_RecordAndLookup(t *testing.T) {
	for _, s := range strategies() {
		t.Run(string(s), func(t *testing.T) {
			trk := newTracker(t, s)
			g := testutil.NewGraph()
			n := g.AddNodes(1)[0]

			want := ir.PhaseIdentity{Kind: "Canonicalizer", Sequence: 0}
			trk.RecordCreator(n, want)

			got, err := trk.LookupCreator(n)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestTracker_RecordOverwrites(t *testing.T) {
	for _, s := range strategies() {
		t.Run(string(s), func(t *testing.T) {
			trk := newTracker(t, s)
			g := testutil.NewGraph()
			n := g.AddNodes(1)[0]

			trk.RecordCreator(n, ir.PhaseIdentity{Kind: "Canonicalizer", Sequence: 0})
			trk.RecordCreator(n, ir.PhaseIdentity{Kind: "Inliner", Sequence: 1})

			got, err := trk.LookupCreator(n)
			require.NoError(t, err)
			assert.Equal(t, ir.PhaseIdentity{Kind: "Inliner", Sequence: 1}, got,
				"a node keeps only its most recent explicit attribution")
		})
	}
}

func TestTracker_LookupUnrecorded(t *testing.T) {
	for _, s := range strategies() {
		t.Run(string(s), func(t *testing.T) {
			trk := newTracker(t, s)
			g := testutil.NewGraph()
			n := g.AddNodes(1)[0]

			_, err := trk.LookupCreator(n)
			assert.ErrorIs(t, err, tracker.ErrUnrecorded)
			assert.NotErrorIs(t, err, tracker.ErrStale,
				"an unseen node is pre-existing, not inconsistent")
		})
	}
}

func TestTracker_ForgetMakesLookupStale(t *testing.T) {
	for _, s := range strategies() {
		t.Run(string(s), func(t *testing.T) {
			trk := newTracker(t, s)
			g := testutil.NewGraph()
			n := g.AddNodes(1)[0]

			trk.RecordCreator(n, ir.PhaseIdentity{Kind: "Lowerer", Sequence: 2})
			trk.Forget(n)

			_, err := trk.LookupCreator(n)
			require.ErrorIs(t, err, tracker.ErrStale)

			var stale *tracker.StaleError
			require.ErrorAs(t, err, &stale)
			assert.Equal(t, n.NodeID(), stale.NodeID)
			assert.NotEmpty(t, stale.Reason)
		})
	}
}

func TestTracker_StampNewFirstWriterWins(t *testing.T) {
	for _, s := range strategies() {
		t.Run(string(s), func(t *testing.T) {
			trk := newTracker(t, s)
			g := testutil.NewGraph()
			old := g.AddNodes(1)[0]

			first := ir.PhaseIdentity{Kind: "Canonicalizer", Sequence: 0}
			trk.StampNew(g, first)

			fresh := g.AddNodes(1)[0]
			second := ir.PhaseIdentity{Kind: "Inliner", Sequence: 1}
			trk.StampNew(g, second)

			got, err := trk.LookupCreator(old)
			require.NoError(t, err)
			assert.Equal(t, first, got, "a later stamp never displaces an earlier one")

			got, err = trk.LookupCreator(fresh)
			require.NoError(t, err)
			assert.Equal(t, second, got, "only unattributed nodes pick up the new stamp")
		})
	}
}

func TestTracker_StampNewReclaimsForgottenIdentity(t *testing.T) {
	for _, s := range strategies() {
		t.Run(string(s), func(t *testing.T) {
			trk := newTracker(t, s)
			g := testutil.NewGraph()
			n := g.AddNodes(1)[0]

			trk.RecordCreator(n, ir.PhaseIdentity{Kind: "Canonicalizer", Sequence: 0})
			trk.Forget(n)

			// The identity comes back: a reused slot is a fresh node, not a
			// stale one.
			reused := ir.PhaseIdentity{Kind: "Inliner", Sequence: 3}
			trk.StampNew(g, reused)

			got, err := trk.LookupCreator(n)
			require.NoError(t, err)
			assert.Equal(t, reused, got)
		})
	}
}

func TestProperty_BareNodeLookupIsStale(t *testing.T) {
	trk := newTracker(t, tracker.StrategyProperty)
	n := &bareNode{id: 42}

	_, err := trk.LookupCreator(n)
	require.ErrorIs(t, err, tracker.ErrStale,
		"a node without metadata capability cannot be mistaken for pre-existing")

	var stale *tracker.StaleError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, uint64(42), stale.NodeID)
}

func TestProperty_SingleMetadataKeyPerNode(t *testing.T) {
	trk := newTracker(t, tracker.StrategyProperty)
	g := testutil.NewGraph()
	n := g.AddNodes(1)[0]

	trk.RecordCreator(n, ir.PhaseIdentity{Kind: "Canonicalizer", Sequence: 0})
	trk.RecordCreator(n, ir.PhaseIdentity{Kind: "Inliner", Sequence: 1})
	trk.Forget(n)
	trk.StampNew(g, ir.PhaseIdentity{Kind: "Lowerer", Sequence: 2})

	assert.Equal(t, 1, n.InfoCount(),
		"all attribution states share one metadata slot")
}

func TestSideTable_ForgetWithoutRecordIsStaleNotUnrecorded(t *testing.T) {
	trk := newTracker(t, tracker.StrategySideTable)
	g := testutil.NewGraph()
	n := g.AddNodes(1)[0]

	trk.Forget(n)

	_, err := trk.LookupCreator(n)
	assert.ErrorIs(t, err, tracker.ErrStale,
		"a deletion report outlives the node's missing attribution")
}
