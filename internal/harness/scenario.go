package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a set of compilation events
// driven through a single collector.
type Scenario struct {
	// Name uniquely identifies this scenario; also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Strategy selects the tracker strategy: "sidetable" (default) or
	// "property". Artifacts must not depend on the choice.
	Strategy string `yaml:"strategy,omitempty"`

	// Events lists the compilation events, executed sequentially.
	Events []EventScript `yaml:"events"`
}

// EventScript describes one compilation event's phase pipeline.
type EventScript struct {
	// Token is the event's stable identity.
	Token string `yaml:"token"`

	// Preexisting is the number of nodes alive before tracking begins,
	// i.e. nodes the matrix attributes to the NoPhase sentinel.
	Preexisting int `yaml:"preexisting"`

	// Phases run in order.
	Phases []PhaseScript `yaml:"phases"`
}

// PhaseScript describes one phase invocation.
type PhaseScript struct {
	// Kind is the transformation kind entering the matrix row index.
	Kind string `yaml:"kind"`

	// Creates is how many nodes the phase adds to the graph.
	Creates int `yaml:"creates,omitempty"`

	// Deletes is how many of the newest nodes the phase removes. The
	// host deletion hook fires for each.
	Deletes int `yaml:"deletes,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks structural requirements before execution.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("scenario has no events")
	}
	seen := make(map[string]bool, len(s.Events))
	for i, ev := range s.Events {
		if ev.Token == "" {
			return fmt.Errorf("event %d: token is required", i)
		}
		if seen[ev.Token] {
			return fmt.Errorf("duplicate event token %q", ev.Token)
		}
		seen[ev.Token] = true
		if ev.Preexisting < 0 {
			return fmt.Errorf("event %q: preexisting must be >= 0", ev.Token)
		}
		for j, ph := range ev.Phases {
			if ph.Kind == "" {
				return fmt.Errorf("event %q phase %d: kind is required", ev.Token, j)
			}
			if ph.Creates < 0 || ph.Deletes < 0 {
				return fmt.Errorf("event %q phase %d: creates/deletes must be >= 0", ev.Token, j)
			}
		}
	}
	return nil
}
