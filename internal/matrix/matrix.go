package matrix

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/phaseflow/phaseflow/internal/ir"
	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/tracker"
)

// Matrix is the per-compilation-event dependency accumulator: an ordered
// set of observed phase kinds and a sparse matrix of cell counters.
//
// Lifecycle: created lazily by the event scope on the first phase-boundary
// call, mutated by Update on every phase entry, drained exactly once by
// Dump when the compilation ends.
//
// Double-dump policy: Dump is idempotent. The first call seals the matrix
// and caches the artifact; later calls log a warning and return the cached
// bytes. A sealed matrix is never re-scanned, so a misplaced second dump
// can never observe post-drain mutation.
type Matrix struct {
	trk tracker.Tracker
	log *slog.Logger

	order  PhaseOrder
	phases *phaseSet

	// drain is the inverted reader/writer lock described in the package
	// comment: RLock guards shared mutation, Lock guards the exclusive
	// drain.
	drain  sync.RWMutex
	sealed bool

	rowsMu sync.Mutex
	rows   map[ir.PhaseKind]*row

	artifact []byte
	dumped   bool
}

// row holds the cells of one consuming phase kind. The cells map is
// guarded by mu for structural changes; counter increments are atomic and
// proceed without it.
type row struct {
	mu    sync.Mutex
	cells map[ir.PhaseKind]*Counter
}

// cell returns the counter for col, creating it if absent.
func (r *row) cell(col ir.PhaseKind) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cells[col]
	if !ok {
		c = &Counter{}
		r.cells[col] = c
	}
	return c
}

// lookup returns the counter for col, or nil if the cell does not exist.
func (r *row) lookup(col ir.PhaseKind) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cells[col]
}

// each calls f for every existing cell.
func (r *row) each(f func(col ir.PhaseKind, c *Counter)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for col, c := range r.cells {
		f(col, c)
	}
}

// New creates an empty matrix bound to the given tracker. The phase index
// starts with the two sentinels.
func New(trk tracker.Tracker, log *slog.Logger) *Matrix {
	if log == nil {
		log = slog.Default()
	}
	return &Matrix{
		trk:    trk,
		log:    log,
		phases: newPhaseSet(),
		rows:   make(map[ir.PhaseKind]*row, 64),
	}
}

// Order returns the matrix's phase sequence counter. The event scope uses
// it to stamp newly created nodes after a phase completes and to reset at
// compilation boundaries.
func (m *Matrix) Order() *PhaseOrder {
	return &m.order
}

// Update records the node population entering a run of kind. Called at
// phase entry with the live graph before the phase mutates it.
//
// The returned identity covers the imminent phase run and is allocated
// even when the update itself is skipped, so post-phase stamping never
// reuses a sequence number.
//
// The second return is false when the update was skipped because a drain
// was in progress (or already finished). Skipped updates are never queued
// or retried: the compiler is not blocked for the sake of complete data.
func (m *Matrix) Update(g ir.Graph, kind ir.PhaseKind) (ir.PhaseIdentity, bool) {
	identity := ir.PhaseIdentity{Kind: kind, Sequence: m.order.NextSequence()}

	if !m.drain.TryRLock() {
		// Dump in progress, leave the matrix alone.
		return identity, false
	}
	defer m.drain.RUnlock()

	if m.sealed {
		return identity, false
	}

	m.phases.Add(kind)
	r := m.row(kind)

	// For each node entering the phase, charge the cell of the phase
	// that created it.
	for n := range g.Nodes() {
		creator, err := m.trk.LookupCreator(n)
		col := creator.Kind
		switch {
		case err == nil:
		case errors.Is(err, tracker.ErrUnrecorded):
			// Pre-existing node, not an error.
			col = ir.NoPhase
		case errors.Is(err, tracker.ErrStale):
			m.log.Error("stale origin lookup",
				"node", n.NodeID(),
				"phase", kind,
				"error", err,
			)
			col = ir.DeletedPhase
		default:
			// Unexpected tracker failure: log and skip the node. No
			// single node may fail the whole update.
			m.log.Error("origin lookup failed",
				"node", n.NodeID(),
				"phase", kind,
				"error", err,
			)
			continue
		}
		r.cell(col).addSeen(1)
	}

	// Every cell that exists for this row so far gets the graph size and
	// one invocation. This lets a reader compute, per (creator, consumer)
	// pair, what fraction of the consumer's average graph the creator
	// contributed across however many times the consumer ran.
	total := uint64(g.NodeCount())
	r.each(func(_ ir.PhaseKind, c *Counter) {
		c.addTotal(total)
		c.addInvocation()
	})

	return identity, true
}

// row returns the row for kind, creating it if absent.
func (m *Matrix) row(kind ir.PhaseKind) *row {
	m.rowsMu.Lock()
	defer m.rowsMu.Unlock()
	r, ok := m.rows[kind]
	if !ok {
		r = &row{cells: make(map[ir.PhaseKind]*Counter, 16)}
		m.rows[kind] = r
	}
	return r
}

// rowIfPresent returns the row for kind or nil.
func (m *Matrix) rowIfPresent(kind ir.PhaseKind) *row {
	m.rowsMu.Lock()
	defer m.rowsMu.Unlock()
	return m.rows[kind]
}

// Dump drains the matrix into its serialized artifact. It blocks until
// all in-flight Update calls finish; updates arriving during or after the
// drain are silently skipped, so the artifact reflects the state frozen
// at drain start.
//
// Idempotent: a second call returns the cached artifact of the first and
// logs a warning, since draining twice is a caller logic error.
func (m *Matrix) Dump() []byte {
	m.drain.Lock()
	defer m.drain.Unlock()

	if m.dumped {
		m.log.Warn("dependency matrix dumped twice, returning cached artifact")
		return m.artifact
	}

	m.sealed = true
	m.artifact = report.Marshal(m.snapshot())
	m.dumped = true
	return m.artifact
}

// snapshot builds the full rectangular report over the phase index.
// Caller must hold the drain lock exclusively.
func (m *Matrix) snapshot() report.Report {
	kinds := m.phases.Kinds()
	rep := report.Report{
		Phases: kinds,
		Cells:  make([]report.Cell, 0, len(kinds)*len(kinds)),
	}
	for _, rk := range kinds {
		r := m.rowIfPresent(rk)
		for _, ck := range kinds {
			cell := report.Cell{Row: rk, Col: ck}
			if r != nil {
				if c := r.lookup(ck); c != nil {
					cell.SeenNodes = c.SeenNodes()
					cell.TotalNodesInPhase = c.TotalNodesInPhase()
					cell.PhaseInvocations = c.PhaseInvocations()
				}
			}
			rep.Cells = append(rep.Cells, cell)
		}
	}
	return rep
}

// Phases returns the current phase index in insertion order.
func (m *Matrix) Phases() []ir.PhaseKind {
	return m.phases.Kinds()
}

// Cell returns the counters for a (row, col) pair, or zeros if the cell
// does not exist. Intended for tests and diagnostics; values may be
// mid-update unless the caller has quiesced the writers.
func (m *Matrix) Cell(rowKind, colKind ir.PhaseKind) (seen, total, invocations uint64) {
	r := m.rowIfPresent(rowKind)
	if r == nil {
		return 0, 0, 0
	}
	c := r.lookup(colKind)
	if c == nil {
		return 0, 0, 0
	}
	return c.SeenNodes(), c.TotalNodesInPhase(), c.PhaseInvocations()
}
