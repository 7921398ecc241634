package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/schedule-arranger/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database: full real
// SQL (constraints, transactions, collations), zero disk, gone on Close.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser creates a user by running the same Upsert production uses.
// Foreign keys are ON in tests too, so everything referencing a user needs a
// real row here first.
func seedUser(t *testing.T, db *DB, githubID int64, username string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:  githubID,
		Username:  username,
		AvatarURL: "https://avatars.githubusercontent.com/u/1",
	}
	if err := db.Users().Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %q: %v", username, err)
	}
	return user
}

// seedSchedule creates a schedule owned by the given user.
func seedSchedule(t *testing.T, db *DB, ownerID, name string) *model.Schedule {
	t.Helper()
	schedule := &model.Schedule{
		Name:      name,
		Memo:      "seeded",
		CreatedBy: ownerID,
	}
	if err := db.Schedules().Create(context.Background(), schedule); err != nil {
		t.Fatalf("failed to seed schedule %q: %v", name, err)
	}
	return schedule
}

// seedCandidates adds candidates to a schedule, returning them with IDs.
func seedCandidates(t *testing.T, db *DB, scheduleID string, names ...string) []model.Candidate {
	t.Helper()
	candidates, err := db.Candidates().CreateBatch(context.Background(), scheduleID, names)
	if err != nil {
		t.Fatalf("failed to seed candidates: %v", err)
	}
	return candidates
}

// countRows counts rows in a table matching one schedule — the cascade-delete
// tests verify emptiness per table with it.
func countRows(t *testing.T, db *DB, table, scheduleID string) int {
	t.Helper()
	var n int
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE schedule_id = ?`
	if table == "schedules" {
		query = `SELECT COUNT(*) FROM schedules WHERE id = ?`
	}
	if err := db.conn.QueryRow(query, scheduleID).Scan(&n); err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	return n
}
