package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sakif/schedule-arranger/internal/apperror"
	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository"
)

// ScheduleDB implements repository.ScheduleRepository over the shared
// connection pool. Obtained via DB.Schedules().
//
// DeleteAggregate reaches across all four aggregate tables; it lives here
// because the schedule row anchors the aggregate and its deletion must be one
// transaction.
type ScheduleDB struct {
	conn *sql.DB
}

// compile-time check that *ScheduleDB implements repository.ScheduleRepository
var _ repository.ScheduleRepository = (*ScheduleDB)(nil)

// Create inserts a new schedule.
//
// ID GENERATION WITH uuid:
// Schedule IDs are UUID v4 — 122 bits of randomness. The detail page is
// reachable by anyone who knows the URL, so the ID must be unguessable;
// a sortable ID scheme (like the xid we use for users) would leak creation
// order and make neighbouring schedules discoverable.
func (db *ScheduleDB) Create(ctx context.Context, schedule *model.Schedule) error {
	schedule.ID = uuid.NewString()

	now := time.Now()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO schedules (id, name, memo, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		schedule.ID,
		schedule.Name,
		schedule.Memo,
		schedule.CreatedBy,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating schedule: %w", err)
	}

	return nil
}

// GetByID retrieves a schedule together with its creator's public identity.
// The JOIN saves the page handler a second round trip: every detail render
// needs the owner's username next to the schedule name.
func (db *ScheduleDB) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var (
		s       model.Schedule
		creator model.User
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT s.id, s.name, s.memo, s.created_by, s.created_at, s.updated_at,
		        u.id, u.username
		 FROM schedules s
		 JOIN users u ON u.id = s.created_by
		 WHERE s.id = ?`,
		id,
	).Scan(
		&s.ID,
		&s.Name,
		&s.Memo,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
		&creator.ID,
		&creator.Username,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("schedule", id)
		}
		return nil, fmt.Errorf("sqlite: getting schedule %s: %w", id, err)
	}

	s.Creator = &creator
	return &s, nil
}

// Update overwrites name, memo and updated_at. Ownership is enforced in the
// service layer before this is called; the repository just writes.
func (db *ScheduleDB) Update(ctx context.Context, schedule *model.Schedule) error {
	schedule.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE schedules SET name = ?, memo = ?, updated_at = ? WHERE id = ?`,
		schedule.Name,
		schedule.Memo,
		schedule.UpdatedAt,
		schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating schedule %s: %w", schedule.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating schedule %s: %w", schedule.ID, err)
	}
	if rows == 0 {
		return apperror.NotFound("schedule", schedule.ID)
	}

	return nil
}

// ListByCreator returns the schedules a user created, most recently updated
// first — the ordering of the home page list.
func (db *ScheduleDB) ListByCreator(ctx context.Context, userID string) ([]model.Schedule, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, memo, created_by, created_at, updated_at
		 FROM schedules
		 WHERE created_by = ?
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing schedules for user %s: %w", userID, err)
	}
	defer rows.Close()

	// Initialise to an empty slice (not nil) so callers and templates can
	// range over it without nil checks.
	schedules := []model.Schedule{}
	for rows.Next() {
		var s model.Schedule
		if err := rows.Scan(&s.ID, &s.Name, &s.Memo, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning schedule row: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating schedule rows: %w", err)
	}

	return schedules, nil
}

// DeleteAggregate removes a schedule and everything that references it.
//
// The four deletes run inside ONE transaction, children first (comments,
// availabilities, candidates) so foreign keys are satisfied at every step,
// then the schedule row itself. The transaction is what makes deletion look
// atomic from outside:
//   - a concurrent grid read sees either the whole aggregate or none of it
//   - a cell write racing the cascade cannot land between the candidate
//     delete and the schedule delete and reintroduce an orphan
//
// Deleting a schedule that does not exist is a no-op, not an error — the
// per-table deletes are idempotent, so a retried delete is always safe.
func (db *ScheduleDB) DeleteAggregate(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op; this only fires when we
	// bail out early.
	defer tx.Rollback()

	steps := []struct {
		desc  string
		query string
	}{
		{"deleting comments", `DELETE FROM comments WHERE schedule_id = ?`},
		{"deleting availabilities", `DELETE FROM availabilities WHERE schedule_id = ?`},
		{"deleting candidates", `DELETE FROM candidates WHERE schedule_id = ?`},
		{"deleting schedule", `DELETE FROM schedules WHERE id = ?`},
	}

	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
			return fmt.Errorf("sqlite: %s for schedule %s: %w", step.desc, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of schedule %s: %w", id, err)
	}

	return nil
}
