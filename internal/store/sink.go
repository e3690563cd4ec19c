package store

import (
	"context"
	"fmt"

	"github.com/phaseflow/phaseflow/internal/report"
)

// ReportSink adapts a Store to the report.Sink interface so the collector
// can persist finished matrices directly into SQLite.
type ReportSink struct {
	store *Store
}

// NewReportSink wraps st as a collector-facing sink.
func NewReportSink(st *Store) *ReportSink {
	return &ReportSink{store: st}
}

// Write implements report.Sink: parses the artifact and stores it under
// the event's identity. Re-writing an already stored event fails, keeping
// the exactly-once contract loud.
func (s *ReportSink) Write(event string, artifact []byte) error {
	rep, err := report.Parse(artifact)
	if err != nil {
		return fmt.Errorf("store sink: %w", err)
	}
	rep.Event = event

	inserted, err := s.store.WriteReport(context.Background(), rep)
	if err != nil {
		return fmt.Errorf("store sink: %w", err)
	}
	if !inserted {
		return fmt.Errorf("store sink: report for event %q already stored", event)
	}
	return nil
}
