package model

import "time"

// Schedule is a named event proposal with a memo and a set of candidate slots.
//
// The ID is a random UUID v4 generated server-side at creation time. Schedules
// are reachable only by URL, so the ID doubles as a capability: it must be
// unguessable, never reassigned, and never enumerable. An auto-incrementing
// integer would let anyone walk /schedules/1, /schedules/2, ...
//
// CreatedBy holds the creator's internal user ID. Only the creator may edit or
// delete the schedule; everyone else may view it and fill in availability.
type Schedule struct {
	ID        string    `json:"scheduleId" db:"id"`
	Name      string    `json:"scheduleName" db:"name"`
	Memo      string    `json:"memo" db:"memo"`
	CreatedBy string    `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Creator is the schedule owner's public identity (ID and Username only),
	// populated by lookups that join the users table. It is display data —
	// never consulted for authorization, which uses CreatedBy directly.
	Creator *User `json:"creator,omitempty" db:"-"`
}

// Candidate is one proposed slot/option within a schedule — an opaque name
// like "2026-09-05 19:00" or just "next Friday". Despite the name it has
// nothing to do with users.
//
// The auto-incrementing ID is the canonical column order for the grid:
// candidates are always displayed ascending by ID, which is insertion order.
// Candidates are only ever created (at schedule creation, or appended on
// edit) and removed together with the whole schedule.
type Candidate struct {
	ID         int64  `json:"candidateId" db:"id"`
	Name       string `json:"candidateName" db:"name"`
	ScheduleID string `json:"scheduleId" db:"schedule_id"`
}
