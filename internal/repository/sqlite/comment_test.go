package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/schedule-arranger/internal/model"
)

func TestCommentUpsert_ReplacesPrevious(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, 1, "alice")
	schedule := seedSchedule(t, db, owner.ID, "Lunch")

	for _, text := range []string{"first thoughts", "final answer"} {
		err := db.Comments().Upsert(context.Background(), &model.Comment{
			ScheduleID: schedule.ID,
			UserID:     owner.ID,
			Comment:    text,
		})
		if err != nil {
			t.Fatalf("Upsert(%q) error = %v", text, err)
		}
	}

	comments, err := db.Comments().ListBySchedule(context.Background(), schedule.ID)
	if err != nil {
		t.Fatalf("ListBySchedule() error = %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1 (replace, not append)", len(comments))
	}
	if comments[0].Comment != "final answer" {
		t.Errorf("Comment = %q, want %q", comments[0].Comment, "final answer")
	}
}

func TestCommentUpsert_OnePerUserPerSchedule(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, 1, "alice")
	bob := seedUser(t, db, 2, "bob")
	schedule := seedSchedule(t, db, alice.ID, "Lunch")
	other := seedSchedule(t, db, alice.ID, "Dinner")

	seed := []model.Comment{
		{ScheduleID: schedule.ID, UserID: alice.ID, Comment: "from alice"},
		{ScheduleID: schedule.ID, UserID: bob.ID, Comment: "from bob"},
		{ScheduleID: other.ID, UserID: alice.ID, Comment: "other schedule"},
	}
	for i := range seed {
		if err := db.Comments().Upsert(context.Background(), &seed[i]); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	comments, err := db.Comments().ListBySchedule(context.Background(), schedule.ID)
	if err != nil {
		t.Fatalf("ListBySchedule() error = %v", err)
	}
	if len(comments) != 2 {
		t.Errorf("got %d comments, want 2 (one per user, scoped to the schedule)", len(comments))
	}
}
