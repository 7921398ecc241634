package model

// Viewer is the authenticated identity a grid is built for. The viewer always
// gets a row in the grid, even before they have answered anything.
type Viewer struct {
	ID       string
	Username string
}

// GridRow is one user row of the rendered grid.
type GridRow struct {
	UserID   string
	Username string
	IsSelf   bool // true for the viewing user's own row
}

// Grid is the dense user × candidate matrix for one schedule.
//
// Storage keeps only the cells users have actually touched; the grid is the
// read-time projection that fills in the rest. The cell and comment maps stay
// unexported so the only way to read them is through Cell and Comment, which
// encode the defaulting rules (missing cell → Absent, missing comment →
// "no comment", not an empty one).
//
// Templates call the methods directly:
//
//	{{$grid.Cell $row.UserID $candidate.ID}}
type Grid struct {
	Candidates []Candidate
	Rows       []GridRow

	cells    map[string]map[int64]AvailabilityState // userID → candidateID → state
	comments map[string]string                      // userID → comment
}

// NewGrid assembles a grid from its parts. The cell map may be sparse — any
// (row, candidate) pair absent from it reads as Absent.
func NewGrid(candidates []Candidate, rows []GridRow, cells map[string]map[int64]AvailabilityState, comments map[string]string) *Grid {
	return &Grid{
		Candidates: candidates,
		Rows:       rows,
		cells:      cells,
		comments:   comments,
	}
}

// Cell returns the availability for one user × candidate pair.
// Cells nobody has written read as Absent — the zero AvailabilityState.
func (g *Grid) Cell(userID string, candidateID int64) AvailabilityState {
	return g.cells[userID][candidateID]
}

// Comment returns a user's comment and whether one exists. A user with no
// comment row yields ("", false) so the page can skip rendering the cell
// entirely rather than show an empty string.
func (g *Grid) Comment(userID string) (string, bool) {
	c, ok := g.comments[userID]
	return c, ok
}

// CommentText returns a user's comment, or "" when none exists. html/template
// rejects two-result methods unless the second result is an error, so pages
// use this instead of Comment.
func (g *Grid) CommentText(userID string) string {
	return g.comments[userID]
}
