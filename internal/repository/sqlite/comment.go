package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository"
)

// CommentDB implements repository.CommentRepository over the shared
// connection pool. Obtained via DB.Comments().
type CommentDB struct {
	conn *sql.DB
}

// compile-time check that *CommentDB implements repository.CommentRepository
var _ repository.CommentRepository = (*CommentDB)(nil)

// Upsert inserts or replaces a user's comment on a schedule. Same native
// upsert shape as availability cells, anchored on the (schedule_id, user_id)
// UNIQUE constraint — one comment per user per schedule, last write wins.
func (db *CommentDB) Upsert(ctx context.Context, c *model.Comment) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (schedule_id, user_id, comment)
		 VALUES (?, ?, ?)
		 ON CONFLICT (schedule_id, user_id)
		 DO UPDATE SET comment = excluded.comment`,
		c.ScheduleID,
		c.UserID,
		c.Comment,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting comment (schedule=%s user=%s): %w",
			c.ScheduleID, c.UserID, err)
	}

	return nil
}

// ListBySchedule returns all comments on a schedule. No ordering clause:
// the grid indexes comments by user ID, so the row order never shows through.
func (db *CommentDB) ListBySchedule(ctx context.Context, scheduleID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT schedule_id, user_id, comment FROM comments WHERE schedule_id = ?`,
		scheduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for schedule %s: %w", scheduleID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ScheduleID, &c.UserID, &c.Comment); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment rows: %w", err)
	}

	return comments, nil
}
