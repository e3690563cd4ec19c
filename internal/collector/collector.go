// Package collector binds dependency matrices to compilation events and
// exposes the phase-boundary hooks called by the host instrumentation.
//
// ARCHITECTURE:
//
// The host compiler runs many compilations concurrently, one per worker.
// Each compilation is identified by a stable EventToken and owns exactly
// one matrix and one tracker; there is no cross-event sharing. Node
// identity is only stable within one compilation, so a tracker shared
// across events would read one event's attributions through another
// event's reused node IDs. The collector holds the token -> state
// binding, creates state lazily on the first phase-boundary call, and
// finalizes it exactly once when the event ends.
//
// Hook flow per phase: PrePhase charges the matrix row of the entered
// phase using the recorded origins of the live node population, then the
// phase runs, then PostPhase stamps every newly observed node with the
// just-finished phase's identity.
//
// ERROR POLICY: nothing escapes. Per-node failures are logged and the
// node skipped; sink failures are logged and dropped. Instrumentation is
// best-effort and must never change host compilation behavior.
package collector

import (
	"log/slog"
	"sync"

	"github.com/phaseflow/phaseflow/internal/ir"
	"github.com/phaseflow/phaseflow/internal/matrix"
	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/tracker"
)

// EventToken identifies one compilation event (one method compile). Any
// stable token distinguishing concurrently running compilations works;
// hosts without one can use a TokenGenerator.
type EventToken string

// Collector is the engine's host-facing surface.
//
// Thread-safety: all methods are safe for concurrent use. Calls for
// different tokens never contend beyond the scope map lookup; calls for
// the same token follow the matrix's own locking discipline.
type Collector struct {
	newTracker tracker.Factory
	sink       report.Sink
	log        *slog.Logger

	ready sync.Once

	mu     sync.Mutex
	events map[EventToken]*eventState
}

// eventState is the per-compilation-event binding: one tracker and one
// matrix, whose embedded phase order restarts at 0 for every new event.
// Released as a whole when the event ends, so attribution state never
// leaks into a later event reusing the same node IDs.
type eventState struct {
	trk    tracker.Tracker
	matrix *matrix.Matrix
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Collector) {
		c.log = log
	}
}

// New creates a collector writing finished matrices to sink. Every
// compilation event gets a fresh tracker from newTracker.
func New(newTracker tracker.Factory, sink report.Sink, opts ...Option) *Collector {
	c := &Collector{
		newTracker: newTracker,
		sink:       sink,
		log:        slog.Default(),
		events:     make(map[EventToken]*eventState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTrackingReady marks the host's one-time process-wide initialization
// point. Called by the instrumentation once, before the first node
// exists. Idempotent.
func (c *Collector) OnTrackingReady() {
	c.ready.Do(func() {
		c.log.Debug("node origin tracking ready")
	})
}

// PrePhase is called immediately before a transformation phase executes,
// with the live node population the phase will see. It charges the
// matrix row for kind and allocates the sequence number covering the
// imminent run.
func (c *Collector) PrePhase(token EventToken, g ir.Graph, kind ir.PhaseKind) {
	st := c.state(token)
	if _, ok := st.matrix.Update(g, kind); !ok {
		c.log.Debug("matrix update skipped, drain in progress",
			"event", token,
			"phase", kind,
		)
	}

	// Any node still unattributed at phase entry came into existence
	// outside a tracked phase: claim it for the no-phase sentinel now so
	// the imminent phase's post-phase stamping cannot claim nodes it did
	// not create.
	st.trk.StampNew(g, ir.PhaseIdentity{Kind: ir.NoPhase, Sequence: 0})
}

// PostPhase is called immediately after a transformation phase executed,
// with the post-phase node population. Every node without a prior
// attribution is stamped with the just-finished run's identity.
func (c *Collector) PostPhase(token EventToken, g ir.Graph, kind ir.PhaseKind) {
	st := c.state(token)
	identity := ir.PhaseIdentity{Kind: kind, Sequence: st.matrix.Order().Current()}
	st.trk.StampNew(g, identity)
}

// OnNodeDeleted tells the event's tracker a node left the graph, bounding
// the side table to live plus recently-deleted nodes.
func (c *Collector) OnNodeDeleted(token EventToken, n ir.Node) {
	c.state(token).trk.Forget(n)
}

// OnEventEnd finalizes the event: the bound matrix is drained exactly
// once, the artifact handed to the sink, and the binding (matrix and
// tracker both) released so a future event reusing the token starts
// fresh.
//
// Ending a token with no bound state (no phase ever ran, or already
// ended) is logged and ignored. A compilation that aborts without
// reaching OnEventEnd leaks its binding; hosts that can detect aborts
// should call DropEvent instead.
func (c *Collector) OnEventEnd(token EventToken) {
	st, ok := c.unbind(token)
	if !ok {
		c.log.Warn("event end for unknown compilation event", "event", token)
		return
	}

	artifact := st.matrix.Dump()
	if err := c.sink.Write(string(token), artifact); err != nil {
		// Best-effort: a failed report write must never surface into
		// the host compilation.
		c.log.Error("report sink write failed",
			"event", token,
			"error", err,
		)
		return
	}
	c.log.Debug("dependency matrix dumped",
		"event", token,
		"phases", len(st.matrix.Phases()),
	)
}

// DropEvent releases an event's state without dumping it. Escape hatch
// for hosts that detect aborted compilations and do not want a partial
// report.
func (c *Collector) DropEvent(token EventToken) {
	if _, ok := c.unbind(token); ok {
		c.log.Debug("compilation event dropped without report", "event", token)
	}
}

// state returns the event's binding, creating it lazily on first use.
func (c *Collector) state(token EventToken) *eventState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.events[token]
	if !ok {
		trk := c.newTracker()
		trk.EnableTracking()
		m := matrix.New(trk, c.log)
		m.Order().Reset() // explicit compilation boundary, idempotent on a fresh matrix
		st = &eventState{trk: trk, matrix: m}
		c.events[token] = st
	}
	return st
}

// unbind removes and returns the event's binding.
func (c *Collector) unbind(token EventToken) (*eventState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.events[token]
	if ok {
		delete(c.events, token)
	}
	return st, ok
}

// ActiveEvents returns the number of currently bound compilation events.
// Useful for leak diagnostics and tests.
func (c *Collector) ActiveEvents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}
