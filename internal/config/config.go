// Package config loads phaseflow's YAML configuration: which attribution
// strategy the tracker uses and where finished reports go.
//
// The strategy is chosen once at process start and never switched at
// runtime; nothing downstream of config may branch on it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phaseflow/phaseflow/internal/tracker"
)

// Config is the process-wide phaseflow configuration.
type Config struct {
	// Strategy selects the node-origin tracker: "sidetable" or "property".
	Strategy string `yaml:"strategy"`

	// ReportDir is where artifact files are written, one per finished
	// compilation event.
	ReportDir string `yaml:"report_dir"`

	// Database optionally points at a SQLite file; when set, finished
	// reports are also persisted there for cross-compilation queries.
	Database string `yaml:"database,omitempty"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Strategy:  string(tracker.StrategySideTable),
		ReportDir: "phaseflow-reports",
	}
}

// Load reads and validates a YAML config file. Fields absent from the
// file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values without touching the filesystem.
func (c Config) Validate() error {
	switch tracker.Strategy(c.Strategy) {
	case tracker.StrategySideTable, tracker.StrategyProperty:
	default:
		return fmt.Errorf("unknown tracker strategy %q (want %q or %q)",
			c.Strategy, tracker.StrategySideTable, tracker.StrategyProperty)
	}
	if c.ReportDir == "" {
		return fmt.Errorf("report_dir must not be empty")
	}
	return nil
}

// TrackerStrategy returns the validated strategy as its typed form.
func (c Config) TrackerStrategy() tracker.Strategy {
	return tracker.Strategy(c.Strategy)
}
