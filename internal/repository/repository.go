package repository

import (
	"context"

	"github.com/sakif/schedule-arranger/internal/model"
)

// UserRepository persists user accounts keyed by their GitHub identity.
type UserRepository interface {
	// Upsert creates the user on first login and refreshes username/avatar on
	// subsequent logins, keyed by GitHubID. The internal ID is preserved.
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ScheduleRepository persists schedules and owns the aggregate delete.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	// GetByID returns the schedule with Creator populated (ID and username).
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule) error
	// ListByCreator returns the schedules a user created, most recently
	// updated first. Backs the home page.
	ListByCreator(ctx context.Context, userID string) ([]model.Schedule, error)
	// DeleteAggregate removes the schedule and every row referencing it —
	// comments, availabilities, candidates, then the schedule itself — inside
	// a single transaction. Either the whole aggregate disappears or none of
	// it does; a concurrent cell write can never reintroduce an orphan.
	DeleteAggregate(ctx context.Context, id string) error
}

// CandidateRepository persists the slots of a schedule. Candidates are only
// ever created in batches and deleted via the schedule aggregate.
type CandidateRepository interface {
	// CreateBatch inserts one candidate per name, in order, and returns them
	// with their assigned IDs. IDs are strictly ascending in insertion order;
	// the grid relies on that as its column order.
	CreateBatch(ctx context.Context, scheduleID string, names []string) ([]model.Candidate, error)
	// ListBySchedule returns candidates ordered ascending by ID.
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.Candidate, error)
	GetByID(ctx context.Context, id int64) (*model.Candidate, error)
}

// AvailabilityRepository persists per-cell answers.
type AvailabilityRepository interface {
	// Upsert inserts the cell on first write and overwrites its state on
	// every subsequent write. Exactly one row per (schedule, user, candidate)
	// regardless of how many times it is called.
	Upsert(ctx context.Context, a *model.Availability) error
	// ListBySchedule returns every answer for the schedule joined with the
	// answering user's username, ordered by username (case-insensitive) then
	// candidate ID. The grid derives its row order from this ordering.
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.AvailabilityRow, error)
}

// CommentRepository persists per-user schedule comments.
type CommentRepository interface {
	// Upsert inserts or replaces the user's comment, keyed (schedule, user).
	Upsert(ctx context.Context, c *model.Comment) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.Comment, error)
}
