package store

import (
	"context"
	"fmt"
	"time"

	"github.com/phaseflow/phaseflow/internal/report"
)

// WriteReport persists one finished report in a single transaction.
//
// Uses ON CONFLICT(event_id) DO NOTHING for idempotency: re-importing an
// event already present is silently ignored and reported via inserted.
// Zero cells are not stored; they are implied by the phase index and
// reconstructed on read.
func (s *Store) WriteReport(ctx context.Context, rep report.Report) (inserted bool, err error) {
	if rep.Event == "" {
		return false, fmt.Errorf("write report: empty event id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write report: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO events (event_id, imported_at, phase_count, artifact)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(event_id) DO NOTHING
	`,
		rep.Event,
		time.Now().Unix(),
		len(rep.Phases),
		string(report.Marshal(rep)),
	)
	if err != nil {
		return false, fmt.Errorf("write report event %s: %w", rep.Event, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write report event %s: %w", rep.Event, err)
	}
	if n == 0 {
		// Already imported; keep the first write.
		return false, nil
	}

	for pos, kind := range rep.Phases {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO phases (event_id, position, kind)
			VALUES (?, ?, ?)
		`, rep.Event, pos, string(kind)); err != nil {
			return false, fmt.Errorf("write report phase %s/%s: %w", rep.Event, kind, err)
		}
	}

	for _, c := range rep.Cells {
		if c.SeenNodes == 0 && c.TotalNodesInPhase == 0 && c.PhaseInvocations == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cells (event_id, row_kind, col_kind, seen_nodes, total_nodes, phase_invocations)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			rep.Event,
			string(c.Row),
			string(c.Col),
			int64(c.SeenNodes),
			int64(c.TotalNodesInPhase),
			int64(c.PhaseInvocations),
		); err != nil {
			return false, fmt.Errorf("write report cell %s/%s/%s: %w", rep.Event, c.Row, c.Col, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write report event %s: commit: %w", rep.Event, err)
	}

	return true, nil
}
