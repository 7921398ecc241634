package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/schedule-arranger/internal/apperror"
	"github.com/sakif/schedule-arranger/internal/model"
)

// newTestAvailabilityService wires an AvailabilityService to the shared mocks
// and seeds one schedule ("s1" owned by "u-owner") with one candidate (ID 1).
func newTestAvailabilityService(t *testing.T) (*AvailabilityService, *mockAvailabilityRepo, *mockCommentRepo) {
	t.Helper()
	schedules := newMockScheduleRepo()
	candidates := newMockCandidateRepo()
	availabilities := newMockAvailabilityRepo()
	comments := newMockCommentRepo()

	schedules.schedules["s1"] = &model.Schedule{ID: "s1", Name: "Lunch", CreatedBy: "u-owner"}

	if _, err := candidates.CreateBatch(context.Background(), "s1", []string{"Mon"}); err != nil {
		t.Fatalf("failed to seed candidate: %v", err)
	}

	svc := NewAvailabilityService(schedules, candidates, availabilities, comments, newTestLogger())
	return svc, availabilities, comments
}

// =========================================================================
// AVAILABILITY CELL TESTS
// =========================================================================

func TestSetAvailability_StoresAndEchoes(t *testing.T) {
	svc, availabilities, _ := newTestAvailabilityService(t)

	state, err := svc.SetAvailability(context.Background(), "s1", "u-alice", 1, 2)
	if err != nil {
		t.Fatalf("SetAvailability() error = %v", err)
	}
	if state != model.Present {
		t.Errorf("returned state = %v, want Present", state)
	}

	key := availabilityKey{"s1", "u-alice", 1}
	if got := availabilities.cells[key]; got != model.Present {
		t.Errorf("stored state = %v, want Present", got)
	}
}

func TestSetAvailability_LastWriteWins(t *testing.T) {
	svc, availabilities, _ := newTestAvailabilityService(t)

	// The toggle cycle writes the same cell repeatedly; exactly one row
	// exists afterwards, holding the last value.
	for _, value := range []int{1, 2, 0, 1} {
		if _, err := svc.SetAvailability(context.Background(), "s1", "u-alice", 1, value); err != nil {
			t.Fatalf("SetAvailability(%d) error = %v", value, err)
		}
	}

	if len(availabilities.cells) != 1 {
		t.Fatalf("got %d stored cells, want 1", len(availabilities.cells))
	}
	if got := availabilities.cells[availabilityKey{"s1", "u-alice", 1}]; got != model.Undecided {
		t.Errorf("stored state = %v, want Undecided (last write)", got)
	}
}

func TestSetAvailability_RejectsOutOfRange(t *testing.T) {
	svc, availabilities, _ := newTestAvailabilityService(t)

	for _, value := range []int{-1, 3, 42} {
		_, err := svc.SetAvailability(context.Background(), "s1", "u-alice", 1, value)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("SetAvailability(%d) error = %v, want ErrValidation", value, err)
		}
	}
	// Rejected writes never reach storage.
	if len(availabilities.cells) != 0 {
		t.Errorf("got %d stored cells after rejected writes, want 0", len(availabilities.cells))
	}
}

func TestSetAvailability_UnknownCandidate(t *testing.T) {
	svc, _, _ := newTestAvailabilityService(t)

	_, err := svc.SetAvailability(context.Background(), "s1", "u-alice", 999, 1)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSetAvailability_CandidateFromOtherSchedule(t *testing.T) {
	svc, availabilities, _ := newTestAvailabilityService(t)

	// Candidate 1 belongs to s1. Addressing it under a different schedule ID
	// is a not-found, not a write.
	_, err := svc.SetAvailability(context.Background(), "s2", "u-alice", 1, 1)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if len(availabilities.cells) != 0 {
		t.Error("mismatched schedule/candidate pair must not be stored")
	}
}

// =========================================================================
// COMMENT TESTS
// =========================================================================

func TestSetComment_StoresTrimmed(t *testing.T) {
	svc, _, comments := newTestAvailabilityService(t)

	stored, err := svc.SetComment(context.Background(), "s1", "u-alice", "  prefer mornings  ")
	if err != nil {
		t.Fatalf("SetComment() error = %v", err)
	}
	if stored != "prefer mornings" {
		t.Errorf("returned comment = %q, want trimmed", stored)
	}
	if got := comments.comments[commentKey{"s1", "u-alice"}]; got != "prefer mornings" {
		t.Errorf("stored comment = %q, want %q", got, "prefer mornings")
	}
}

func TestSetComment_ReplacesPrevious(t *testing.T) {
	svc, _, comments := newTestAvailabilityService(t)

	svc.SetComment(context.Background(), "s1", "u-alice", "first")
	stored, err := svc.SetComment(context.Background(), "s1", "u-alice", "second")
	if err != nil {
		t.Fatalf("SetComment() error = %v", err)
	}
	if stored != "second" {
		t.Errorf("returned comment = %q, want %q", stored, "second")
	}
	if len(comments.comments) != 1 {
		t.Errorf("got %d stored comments, want 1 (replace, not append)", len(comments.comments))
	}
}

func TestSetComment_TruncatesLong(t *testing.T) {
	svc, _, _ := newTestAvailabilityService(t)

	long := strings.Repeat("x", MaxCommentLength+50)
	stored, err := svc.SetComment(context.Background(), "s1", "u-alice", long)
	if err != nil {
		t.Fatalf("SetComment() error = %v", err)
	}
	if len([]rune(stored)) != MaxCommentLength {
		t.Errorf("comment length = %d runes, want %d", len([]rune(stored)), MaxCommentLength)
	}
}

func TestSetComment_MissingSchedule(t *testing.T) {
	svc, _, comments := newTestAvailabilityService(t)

	_, err := svc.SetComment(context.Background(), "no-such-schedule", "u-alice", "hello")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if len(comments.comments) != 0 {
		t.Error("comment on a missing schedule must not be stored")
	}
}
