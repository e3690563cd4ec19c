package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phaseflow/phaseflow/internal/ir"
	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func storedReport(event string) report.Report {
	return report.Report{
		Event:  event,
		Phases: []ir.PhaseKind{ir.NoPhase, ir.DeletedPhase, "Canonicalizer", "Inliner"},
		Cells: []report.Cell{
			{Row: ir.NoPhase, Col: ir.NoPhase},
			{Row: ir.NoPhase, Col: ir.DeletedPhase},
			{Row: ir.NoPhase, Col: "Canonicalizer"},
			{Row: ir.NoPhase, Col: "Inliner"},
			{Row: ir.DeletedPhase, Col: ir.NoPhase},
			{Row: ir.DeletedPhase, Col: ir.DeletedPhase},
			{Row: ir.DeletedPhase, Col: "Canonicalizer"},
			{Row: ir.DeletedPhase, Col: "Inliner"},
			{Row: "Canonicalizer", Col: ir.NoPhase, SeenNodes: 2, TotalNodesInPhase: 2, PhaseInvocations: 1},
			{Row: "Canonicalizer", Col: ir.DeletedPhase, TotalNodesInPhase: 2, PhaseInvocations: 1},
			{Row: "Canonicalizer", Col: "Canonicalizer", TotalNodesInPhase: 2, PhaseInvocations: 1},
			{Row: "Canonicalizer", Col: "Inliner", TotalNodesInPhase: 2, PhaseInvocations: 1},
			{Row: "Inliner", Col: ir.NoPhase, SeenNodes: 2, TotalNodesInPhase: 3, PhaseInvocations: 1},
			{Row: "Inliner", Col: ir.DeletedPhase, TotalNodesInPhase: 3, PhaseInvocations: 1},
			{Row: "Inliner", Col: "Canonicalizer", SeenNodes: 1, TotalNodesInPhase: 3, PhaseInvocations: 1},
			{Row: "Inliner", Col: "Inliner", TotalNodesInPhase: 3, PhaseInvocations: 1},
		},
	}
}

func TestStore_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestStore_WriteReadRoundtrip(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	in := storedReport("evt-1")

	inserted, err := st.WriteReport(ctx, in)
	require.NoError(t, err)
	assert.True(t, inserted)

	out, err := st.ReadReport(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, in.Phases, out.Phases, "phase index order survives storage")
	assert.Equal(t, in.Cells, out.Cells, "elided zero cells are reconstructed on read")
	assert.Equal(t, "evt-1", out.Event)
}

func TestStore_ReadArtifactReturnsOriginalBytes(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	in := storedReport("evt-raw")

	_, err := st.WriteReport(ctx, in)
	require.NoError(t, err)

	artifact, err := st.ReadArtifact(ctx, "evt-raw")
	require.NoError(t, err)
	assert.Equal(t, string(report.Marshal(in)), string(artifact))
}

func TestStore_WriteReportIdempotent(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	inserted, err := st.WriteReport(ctx, storedReport("evt-dup"))
	require.NoError(t, err)
	assert.True(t, inserted)

	// A re-import carries different counters; the first write wins.
	changed := storedReport("evt-dup")
	changed.Cells[8].SeenNodes = 99

	inserted, err = st.WriteReport(ctx, changed)
	require.NoError(t, err)
	assert.False(t, inserted)

	out, err := st.ReadReport(ctx, "evt-dup")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out.Cells[8].SeenNodes)
}

func TestStore_WriteReportRejectsEmptyEvent(t *testing.T) {
	st := openStore(t)
	rep := storedReport("")

	_, err := st.WriteReport(context.Background(), rep)
	assert.Error(t, err)
}

func TestStore_ListEvents(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	for _, event := range []string{"evt-b", "evt-a", "evt-c"} {
		_, err := st.WriteReport(ctx, storedReport(event))
		require.NoError(t, err)
	}

	events, err := st.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "evt-a", events[0].Event)
	assert.Equal(t, "evt-b", events[1].Event)
	assert.Equal(t, "evt-c", events[2].Event)
	for _, es := range events {
		assert.Equal(t, 4, es.PhaseCount)
		assert.Positive(t, es.ImportedAt)
	}
}

func TestStore_ListEventsEmpty(t *testing.T) {
	st := openStore(t)
	events, err := st.ListEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStore_ReadNotFound(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	_, err := st.ReadArtifact(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.ReadReport(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReportSink_WriteAndDuplicate(t *testing.T) {
	st := openStore(t)
	sink := store.NewReportSink(st)

	artifact := report.Marshal(storedReport("evt-sink"))
	require.NoError(t, sink.Write("evt-sink", artifact))

	err := sink.Write("evt-sink", artifact)
	require.Error(t, err, "the exactly-once contract stays loud through the sink")
	assert.Contains(t, err.Error(), "already stored")

	out, err := st.ReadReport(context.Background(), "evt-sink")
	require.NoError(t, err)
	assert.Len(t, out.Phases, 4)
}

func TestReportSink_RejectsMalformedArtifact(t *testing.T) {
	st := openStore(t)
	sink := store.NewReportSink(st)

	err := sink.Write("evt-bad", []byte("not an artifact"))
	require.Error(t, err)

	_, err = st.ReadReport(context.Background(), "evt-bad")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
