package harness_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phaseflow/phaseflow/internal/harness"
	"github.com/phaseflow/phaseflow/internal/ir"
	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/tracker"
)

func loadScenario(t *testing.T, name string) *harness.Scenario {
	t.Helper()
	sc, err := harness.LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return sc
}

func TestScenarios_Golden(t *testing.T) {
	for _, name := range []string{
		"three-phase-pipeline",
		"repeated-phase",
		"deleting-phase",
	} {
		t.Run(name, func(t *testing.T) {
			sc := loadScenario(t, name)
			require.NoError(t, harness.RunWithGolden(t, sc))
		})
	}
}

func TestScenarios_StrategyAgnostic(t *testing.T) {
	// The artifact is a contract over observable behavior; the tracker
	// strategy is an implementation detail that must not leak into it.
	for _, name := range []string{
		"three-phase-pipeline",
		"repeated-phase",
		"deleting-phase",
	} {
		t.Run(name, func(t *testing.T) {
			sc := loadScenario(t, name)

			sc.Strategy = string(tracker.StrategySideTable)
			side, err := harness.Run(sc)
			require.NoError(t, err)

			sc.Strategy = string(tracker.StrategyProperty)
			prop, err := harness.Run(sc)
			require.NoError(t, err)

			require.Len(t, prop.Artifacts, len(side.Artifacts))
			for token, want := range side.Artifacts {
				assert.Equal(t, string(want), string(prop.Artifacts[token]),
					"event %s: strategies disagree", token)
			}
		})
	}
}

func TestRun_EventsAreIndependent(t *testing.T) {
	// Both events' graphs assign node IDs from 1, like two compilations
	// of one process. The second event's nodes must come out unattributed
	// even though the first event stamped the same IDs.
	sc := &harness.Scenario{
		Name: "independent-events",
		Events: []harness.EventScript{
			{
				Token:       "evt-1",
				Preexisting: 1,
				Phases:      []harness.PhaseScript{{Kind: "Canonicalizer", Creates: 1}},
			},
			{
				Token:       "evt-2",
				Preexisting: 2,
				Phases:      []harness.PhaseScript{{Kind: "Inliner"}},
			},
		},
	}
	require.NoError(t, sc.Validate())

	res, err := harness.Run(sc)
	require.NoError(t, err)

	rep, err := report.Parse(res.Artifacts["evt-2"])
	require.NoError(t, err)
	assert.NotContains(t, rep.Phases, ir.PhaseKind("Canonicalizer"))
	for _, c := range rep.Cells {
		if c.Row == "Inliner" && c.Col == ir.NoPhase {
			assert.Equal(t, uint64(2), c.SeenNodes)
			assert.Equal(t, uint64(2), c.TotalNodesInPhase)
		}
	}
}

func TestRun_UnknownStrategy(t *testing.T) {
	sc := &harness.Scenario{
		Name:     "bad-strategy",
		Strategy: "ledger",
		Events:   []harness.EventScript{{Token: "evt"}},
	}
	_, err := harness.Run(sc)
	assert.Error(t, err)
}

func TestScenario_Validate(t *testing.T) {
	valid := func() *harness.Scenario {
		return &harness.Scenario{
			Name: "ok",
			Events: []harness.EventScript{
				{Token: "evt-1", Phases: []harness.PhaseScript{{Kind: "Canonicalizer"}}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*harness.Scenario)
	}{
		{"missing name", func(s *harness.Scenario) { s.Name = "" }},
		{"no events", func(s *harness.Scenario) { s.Events = nil }},
		{"empty token", func(s *harness.Scenario) { s.Events[0].Token = "" }},
		{"duplicate token", func(s *harness.Scenario) {
			s.Events = append(s.Events, s.Events[0])
		}},
		{"negative preexisting", func(s *harness.Scenario) { s.Events[0].Preexisting = -1 }},
		{"empty phase kind", func(s *harness.Scenario) { s.Events[0].Phases[0].Kind = "" }},
		{"negative creates", func(s *harness.Scenario) { s.Events[0].Phases[0].Creates = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sc := valid()
			require.NoError(t, sc.Validate())
			tc.mutate(sc)
			assert.Error(t, sc.Validate())
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := harness.LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
