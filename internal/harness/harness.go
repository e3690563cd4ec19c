package harness

import (
	"fmt"
	"log/slog"

	"github.com/phaseflow/phaseflow/internal/collector"
	"github.com/phaseflow/phaseflow/internal/ir"
	"github.com/phaseflow/phaseflow/internal/testutil"
	"github.com/phaseflow/phaseflow/internal/tracker"
)

// Result holds the artifacts a scenario produced, one per event token.
type Result struct {
	Artifacts map[string][]byte
}

// Run executes a scenario against a real Collector with a capturing sink
// and returns the per-event artifacts.
//
// Events run sequentially and each event's phases run serialized, the
// concurrency assumption the engine documents for intra-compilation
// phase execution.
func Run(sc *Scenario) (*Result, error) {
	strategy := tracker.Strategy(sc.Strategy)
	if sc.Strategy == "" {
		strategy = tracker.StrategySideTable
	}

	newTracker, err := tracker.NewFactory(strategy, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	sink := testutil.NewCaptureSink()
	c := collector.New(newTracker, sink)
	c.OnTrackingReady()

	for _, ev := range sc.Events {
		if err := runEvent(c, ev); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}

	result := &Result{Artifacts: make(map[string][]byte, len(sc.Events))}
	for _, ev := range sc.Events {
		artifact, ok := sink.Artifact(ev.Token)
		if !ok {
			return nil, fmt.Errorf("scenario %s: event %q produced no artifact", sc.Name, ev.Token)
		}
		result.Artifacts[ev.Token] = artifact
	}
	return result, nil
}

// runEvent drives one compilation event through the phase-boundary hooks.
func runEvent(c *collector.Collector, ev EventScript) error {
	token := collector.EventToken(ev.Token)
	g := testutil.NewGraph()
	g.AddNodes(ev.Preexisting)

	for _, ph := range ev.Phases {
		kind := ir.PhaseKind(ph.Kind)
		c.PrePhase(token, g, kind)

		// The phase body: create and delete nodes.
		g.AddNodes(ph.Creates)
		for _, n := range g.RemoveLast(ph.Deletes) {
			c.OnNodeDeleted(token, n)
		}

		c.PostPhase(token, g, kind)
	}

	c.OnEventEnd(token)
	return nil
}
