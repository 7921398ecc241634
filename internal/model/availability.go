package model

// AvailabilityState is a user's tri-state answer for one schedule×candidate
// pair. The numeric values are part of the wire contract: the toggle button
// in the browser cycles (state+1)%3 and POSTs the integer back, and the cell
// write endpoint echoes the stored integer in its acknowledgment.
//
// WHY A NAMED int TYPE (not iota-from-1 or a string enum)?
// A cell with no stored row must render as Absent, and Go's zero value for
// AvailabilityState is 0 = Absent. The dense grid falls out of map lookups
// for free: a missing key yields exactly the right display value.
type AvailabilityState int

const (
	Absent    AvailabilityState = 0
	Undecided AvailabilityState = 1
	Present   AvailabilityState = 2
)

// Valid reports whether the value is one of the three allowed states.
// Out-of-range input is rejected before it ever reaches storage.
func (s AvailabilityState) Valid() bool {
	return s >= Absent && s <= Present
}

// String returns the display label used by the grid toggle buttons.
func (s AvailabilityState) String() string {
	switch s {
	case Present:
		return "Present"
	case Undecided:
		return "?"
	default:
		return "Absent"
	}
}

// Availability is one stored cell: a user's answer for a single candidate.
// Rows are created lazily — no record exists until the user first toggles the
// cell — and the (schedule_id, user_id, candidate_id) key is unique, so a
// repeated write updates in place rather than duplicating.
type Availability struct {
	ScheduleID  string            `json:"scheduleId" db:"schedule_id"`
	UserID      string            `json:"userId" db:"user_id"`
	CandidateID int64             `json:"candidateId" db:"candidate_id"`
	State       AvailabilityState `json:"availability" db:"state"`
}

// AvailabilityRow is an Availability joined with the answering user's
// username. The repository returns these ordered by username then candidate
// ID; that ordering drives the row order of the grid.
type AvailabilityRow struct {
	UserID      string
	Username    string
	CandidateID int64
	State       AvailabilityState
}

// Comment is a user's single free-text remark on a schedule, unique per
// (schedule_id, user_id) and replaced wholesale on every write.
type Comment struct {
	ScheduleID string `json:"scheduleId" db:"schedule_id"`
	UserID     string `json:"userId" db:"user_id"`
	Comment    string `json:"comment" db:"comment"`
}
