package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/schedule-arranger/internal/apperror"
	"github.com/sakif/schedule-arranger/internal/model"
)

// =========================================================================
// UPSERT TESTS
// =========================================================================

func TestUserUpsert_FirstLoginCreates(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		GitHubID:  12345,
		Username:  "alice",
		AvatarURL: "https://example.com/alice.png",
	}
	if err := db.Users().Upsert(context.Background(), user); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Upsert() did not assign an internal ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Upsert() did not set CreatedAt")
	}

	stored, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.GitHubID != 12345 || stored.Username != "alice" {
		t.Errorf("stored user = %+v, want github_id 12345 / alice", stored)
	}
}

func TestUserUpsert_RepeatLoginKeepsInternalID(t *testing.T) {
	db := newTestDB(t)

	first := seedUser(t, db, 12345, "alice")

	// Same GitHub account logs in again after renaming themselves.
	second := &model.User{
		GitHubID:  12345,
		Username:  "alice-renamed",
		AvatarURL: "https://example.com/new.png",
	}
	if err := db.Users().Upsert(context.Background(), second); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// The internal ID is assigned once per GitHub account, ever. Everything
	// in the aggregate references it; a new ID here would orphan all of it.
	if second.ID != first.ID {
		t.Errorf("second login ID = %q, want the original %q", second.ID, first.ID)
	}

	stored, err := db.Users().GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Username != "alice-renamed" {
		t.Errorf("Username = %q, want refreshed %q", stored.Username, "alice-renamed")
	}
	if stored.AvatarURL != "https://example.com/new.png" {
		t.Errorf("AvatarURL = %q, want refreshed", stored.AvatarURL)
	}
}

func TestUserUpsert_DistinctGitHubAccountsGetDistinctIDs(t *testing.T) {
	db := newTestDB(t)

	alice := seedUser(t, db, 1, "alice")
	bob := seedUser(t, db, 2, "bob")

	if alice.ID == bob.ID {
		t.Errorf("two accounts share internal ID %q", alice.ID)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "no-such-user")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
