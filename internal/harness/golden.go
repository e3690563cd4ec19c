package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares every produced artifact
// against a golden file. Golden files live in
// testdata/golden/{scenario.Name}-{event token}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files are the source of truth for the artifact serialization
// contract: a diff here means the on-disk report layout changed, which
// breaks downstream visualization tools.
func RunWithGolden(t *testing.T, sc *Scenario) error {
	t.Helper()

	result, err := Run(sc)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, ev := range sc.Events {
		g.Assert(t, sc.Name+"-"+ev.Token, result.Artifacts[ev.Token])
	}

	return nil
}
