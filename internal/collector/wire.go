package collector

import (
	"log/slog"

	"github.com/phaseflow/phaseflow/internal/config"
	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/store"
	"github.com/phaseflow/phaseflow/internal/tracker"
)

// FromConfig assembles a ready-to-use collector from a validated
// configuration: per-event trackers of the configured strategy, a file
// sink in the configured report directory, and, when a database path is
// set, a report database written alongside the files.
//
// The returned close function releases the database handle (a no-op
// without one); call it after the last compilation event has ended.
func FromConfig(cfg config.Config, opts ...Option) (*Collector, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	newTracker, err := tracker.NewFactory(cfg.TrackerStrategy(), slog.Default())
	if err != nil {
		return nil, nil, err
	}

	sinks := report.MultiSink{&report.FileSink{Dir: cfg.ReportDir}}
	closeFn := func() error { return nil }
	if cfg.Database != "" {
		st, err := store.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, store.NewReportSink(st))
		closeFn = st.Close
	}

	return New(newTracker, sinks, opts...), closeFn, nil
}
