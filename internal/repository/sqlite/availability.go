package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository"
)

// AvailabilityDB implements repository.AvailabilityRepository over the shared
// connection pool. Obtained via DB.Availabilities().
type AvailabilityDB struct {
	conn *sql.DB
}

// compile-time check that *AvailabilityDB implements repository.AvailabilityRepository
var _ repository.AvailabilityRepository = (*AvailabilityDB)(nil)

// Upsert writes one availability cell: INSERT on first touch, overwrite on
// every later touch.
//
// ON CONFLICT DO UPDATE (SQLite's native upsert) targets the UNIQUE
// constraint on (schedule_id, user_id, candidate_id). The database resolves
// the insert-vs-update decision atomically, so two concurrent writes to the
// same cell serialize to last-write-wins — there is no read-then-write window
// in which a duplicate row could appear. Writes to different cells touch
// different rows and never conflict at all.
func (db *AvailabilityDB) Upsert(ctx context.Context, a *model.Availability) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO availabilities (schedule_id, user_id, candidate_id, state)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (schedule_id, user_id, candidate_id)
		 DO UPDATE SET state = excluded.state`,
		a.ScheduleID,
		a.UserID,
		a.CandidateID,
		int(a.State),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting availability (schedule=%s user=%s candidate=%d): %w",
			a.ScheduleID, a.UserID, a.CandidateID, err)
	}

	return nil
}

// ListBySchedule returns every stored answer for a schedule, joined with the
// answering user's username.
//
// THE ORDER BY IS LOAD-BEARING:
// Rows come back sorted by username (case-insensitive) then candidate ID, and
// the grid builder derives its row order from the first occurrence of each
// user in exactly this sequence. Change the ordering here and the rows of
// every rendered grid change with it.
func (db *AvailabilityDB) ListBySchedule(ctx context.Context, scheduleID string) ([]model.AvailabilityRow, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT a.user_id, u.username, a.candidate_id, a.state
		 FROM availabilities a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.schedule_id = ?
		 ORDER BY u.username COLLATE NOCASE ASC, a.candidate_id ASC`,
		scheduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing availabilities for schedule %s: %w", scheduleID, err)
	}
	defer rows.Close()

	result := []model.AvailabilityRow{}
	for rows.Next() {
		var (
			r     model.AvailabilityRow
			state int
		)
		if err := rows.Scan(&r.UserID, &r.Username, &r.CandidateID, &state); err != nil {
			return nil, fmt.Errorf("sqlite: scanning availability row: %w", err)
		}
		r.State = model.AvailabilityState(state)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating availability rows: %w", err)
	}

	return result, nil
}
