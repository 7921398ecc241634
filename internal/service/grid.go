package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository"
)

// GridService builds the dense user × candidate availability grid for a
// schedule's detail page.
//
// Storage holds only the cells users have actually touched. The grid is a
// read-time projection over that sparse data: every known user gets a full
// row, every row gets a cell for every candidate, and untouched cells read
// as Absent without ever being written back.
type GridService struct {
	candidates     repository.CandidateRepository
	availabilities repository.AvailabilityRepository
	comments       repository.CommentRepository
	logger         *slog.Logger
}

// NewGridService creates a GridService.
func NewGridService(
	candidates repository.CandidateRepository,
	availabilities repository.AvailabilityRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *GridService {
	return &GridService{
		candidates:     candidates,
		availabilities: availabilities,
		comments:       comments,
		logger:         logger,
	}
}

// Build assembles the grid for one schedule as seen by one viewer.
//
// ALGORITHM:
//  1. Fetch candidates (ascending ID — the column order).
//  2. Fetch availability rows joined with usernames, already sorted by
//     username then candidate ID.
//  3. Fold the rows into a two-level sparse map: userID → candidateID → state.
//  4. Derive row order: the viewer first (flagged IsSelf, present even with
//     zero stored answers), then every other user in order of first
//     appearance in the sorted rows. There is no separate roster table —
//     having answered at least one cell is what puts a user on the grid.
//  5. Fetch comments and index them by user for O(1) lookup during render.
//
// Densification is step "nothing": the sparse map plus Grid.Cell's
// zero-value default IS the dense matrix. Nothing is persisted.
//
// Edge cases that fall out naturally: a schedule with zero candidates yields
// a grid with no columns but still a valid viewer row; a viewer who has never
// answered sees their own all-Absent row at the top.
func (g *GridService) Build(ctx context.Context, scheduleID string, viewer model.Viewer) (*model.Grid, error) {
	candidates, err := g.candidates.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	availRows, err := g.availabilities.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("loading availabilities: %w", err)
	}

	// Step 3: sparse cell lookup.
	cells := make(map[string]map[int64]model.AvailabilityState)
	for _, row := range availRows {
		userCells, ok := cells[row.UserID]
		if !ok {
			userCells = make(map[int64]model.AvailabilityState)
			cells[row.UserID] = userCells
		}
		userCells[row.CandidateID] = row.State
	}

	// Step 4: row order. The viewer is pinned first; everyone else joins in
	// first-seen order over the username-sorted rows. A user appears once no
	// matter how many cells they answered.
	rows := []model.GridRow{{
		UserID:   viewer.ID,
		Username: viewer.Username,
		IsSelf:   true,
	}}
	seen := map[string]bool{viewer.ID: true}

	for _, row := range availRows {
		if seen[row.UserID] {
			continue
		}
		seen[row.UserID] = true
		rows = append(rows, model.GridRow{
			UserID:   row.UserID,
			Username: row.Username,
			IsSelf:   row.UserID == viewer.ID,
		})
	}

	// Step 5: comments indexed by author.
	commentRows, err := g.comments.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("loading comments: %w", err)
	}
	comments := make(map[string]string, len(commentRows))
	for _, c := range commentRows {
		comments[c.UserID] = c.Comment
	}

	g.logger.Debug("grid built",
		slog.String("scheduleID", scheduleID),
		slog.Int("candidates", len(candidates)),
		slog.Int("rows", len(rows)),
	)

	return model.NewGrid(candidates, rows, cells, comments), nil
}
