package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/sakif/schedule-arranger/internal/apperror"
	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository"
)

// CandidateDB implements repository.CandidateRepository over the shared
// connection pool. Obtained via DB.Candidates().
type CandidateDB struct {
	conn *sql.DB
}

// compile-time check that *CandidateDB implements repository.CandidateRepository
var _ repository.CandidateRepository = (*CandidateDB)(nil)

// CreateBatch inserts one candidate per name and returns them with their
// assigned IDs, in insertion order.
//
// The inserts run in a single transaction so a batch from one form
// submission gets a contiguous, uninterleaved ID range even when two
// schedules are being created at the same time. IDs come from SQLite's
// AUTOINCREMENT — strictly ascending, never reused — which is exactly the
// column-ordering guarantee the grid depends on.
func (db *CandidateDB) CreateBatch(ctx context.Context, scheduleID string, names []string) ([]model.Candidate, error) {
	if len(names) == 0 {
		return []model.Candidate{}, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning candidate batch: %w", err)
	}
	defer tx.Rollback()

	candidates := make([]model.Candidate, 0, len(names))
	for _, name := range names {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO candidates (name, schedule_id) VALUES (?, ?)`,
			name, scheduleID,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: inserting candidate %q: %w", name, err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("sqlite: reading candidate id: %w", err)
		}

		candidates = append(candidates, model.Candidate{
			ID:         id,
			Name:       name,
			ScheduleID: scheduleID,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing candidate batch: %w", err)
	}

	return candidates, nil
}

// ListBySchedule returns a schedule's candidates ordered ascending by ID —
// the canonical column order of the grid.
func (db *CandidateDB) ListBySchedule(ctx context.Context, scheduleID string) ([]model.Candidate, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, schedule_id FROM candidates
		 WHERE schedule_id = ?
		 ORDER BY id ASC`,
		scheduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing candidates for schedule %s: %w", scheduleID, err)
	}
	defer rows.Close()

	candidates := []model.Candidate{}
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.ScheduleID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning candidate row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating candidate rows: %w", err)
	}

	return candidates, nil
}

// GetByID retrieves a single candidate. The cell write path uses this to
// reject writes against candidates that don't exist or belong to a different
// schedule.
func (db *CandidateDB) GetByID(ctx context.Context, id int64) (*model.Candidate, error) {
	var c model.Candidate

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, schedule_id FROM candidates WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.ScheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("candidate", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting candidate %d: %w", id, err)
	}

	return &c, nil
}
