package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/phaseflow/phaseflow/internal/ir"
	"github.com/phaseflow/phaseflow/internal/report"
)

// ErrNotFound reports that no report exists for the requested event.
var ErrNotFound = errors.New("report not found")

// EventSummary describes one stored compilation event.
type EventSummary struct {
	Event      string
	PhaseCount int
	ImportedAt int64 // unix seconds, display only
}

// ListEvents returns all stored events, ordered by event id for
// deterministic output.
func (s *Store) ListEvents(ctx context.Context) ([]EventSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, phase_count, imported_at
		FROM events
		ORDER BY event_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	summaries := []EventSummary{}
	for rows.Next() {
		var es EventSummary
		if err := rows.Scan(&es.Event, &es.PhaseCount, &es.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		summaries = append(summaries, es)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return summaries, nil
}

// ReadArtifact returns the raw artifact text stored for an event.
func (s *Store) ReadArtifact(ctx context.Context, event string) ([]byte, error) {
	var artifact string
	err := s.db.QueryRowContext(ctx, `
		SELECT artifact FROM events WHERE event_id = ?
	`, event).Scan(&artifact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", event, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", event, err)
	}
	return []byte(artifact), nil
}

// ReadReport reconstructs the structured report for an event from the
// phases and cells tables. Zero cells elided at write time are restored,
// so the result covers the full phase-index rectangle in index order.
func (s *Store) ReadReport(ctx context.Context, event string) (report.Report, error) {
	phases, err := s.readPhases(ctx, event)
	if err != nil {
		return report.Report{}, err
	}
	if len(phases) == 0 {
		return report.Report{}, fmt.Errorf("event %s: %w", event, ErrNotFound)
	}

	stored, err := s.readCells(ctx, event)
	if err != nil {
		return report.Report{}, err
	}

	rep := report.Report{
		Event:  event,
		Phases: phases,
		Cells:  make([]report.Cell, 0, len(phases)*len(phases)),
	}
	for _, rk := range phases {
		for _, ck := range phases {
			cell := report.Cell{Row: rk, Col: ck}
			if c, ok := stored[cellKey{rk, ck}]; ok {
				cell = c
			}
			rep.Cells = append(rep.Cells, cell)
		}
	}
	return rep, nil
}

type cellKey struct {
	row, col ir.PhaseKind
}

// readPhases returns the event's phase index in insertion order.
func (s *Store) readPhases(ctx context.Context, event string) ([]ir.PhaseKind, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind FROM phases
		WHERE event_id = ?
		ORDER BY position ASC
	`, event)
	if err != nil {
		return nil, fmt.Errorf("query phases %s: %w", event, err)
	}
	defer rows.Close()

	var phases []ir.PhaseKind
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		phases = append(phases, ir.PhaseKind(kind))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phases %s: %w", event, err)
	}
	return phases, nil
}

// readCells returns the stored (nonzero) cells keyed by (row, col).
func (s *Store) readCells(ctx context.Context, event string) (map[cellKey]report.Cell, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_kind, col_kind, seen_nodes, total_nodes, phase_invocations
		FROM cells
		WHERE event_id = ?
		ORDER BY row_kind COLLATE BINARY ASC, col_kind COLLATE BINARY ASC
	`, event)
	if err != nil {
		return nil, fmt.Errorf("query cells %s: %w", event, err)
	}
	defer rows.Close()

	cells := make(map[cellKey]report.Cell)
	for rows.Next() {
		var row, col string
		var seen, total, inv int64
		if err := rows.Scan(&row, &col, &seen, &total, &inv); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		c := report.Cell{
			Row:               ir.PhaseKind(row),
			Col:               ir.PhaseKind(col),
			SeenNodes:         uint64(seen),
			TotalNodesInPhase: uint64(total),
			PhaseInvocations:  uint64(inv),
		}
		cells[cellKey{c.Row, c.Col}] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cells %s: %w", event, err)
	}
	return cells, nil
}
