package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/schedule-arranger/internal/apperror"
	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository"
)

// MaxCommentLength caps schedule comments, in runes.
const MaxCommentLength = 255

// AvailabilityService handles the two single-cell writes: one user's answer
// for one candidate, and one user's schedule-wide comment. Both are
// idempotent set-or-replace operations — calling them once or fifty times
// with the same arguments leaves identical stored state.
//
// A NOTE ON WHOSE CELL GETS WRITTEN:
// The userID parameter is taken from the URL, not from the session. Any
// authenticated user may set availability or a comment for any user — the
// grid is a shared planning surface and marking someone down on their behalf
// ("Dana said she can make Tuesday") is an intended use. The session still
// gates the route; only WHO is being answered for is free.
type AvailabilityService struct {
	schedules      repository.ScheduleRepository
	candidates     repository.CandidateRepository
	availabilities repository.AvailabilityRepository
	comments       repository.CommentRepository
	logger         *slog.Logger
}

// NewAvailabilityService creates an AvailabilityService.
func NewAvailabilityService(
	schedules repository.ScheduleRepository,
	candidates repository.CandidateRepository,
	availabilities repository.AvailabilityRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		schedules:      schedules,
		candidates:     candidates,
		availabilities: availabilities,
		comments:       comments,
		logger:         logger,
	}
}

// SetAvailability stores one cell value and returns the stored state.
//
// value arrives as a raw integer from the form body and is validated against
// the tri-state range BEFORE anything touches storage — an out-of-range write
// is rejected and the previously stored state is untouched.
//
// The candidate must exist and must belong to scheduleID; a mismatched pair
// (real candidate, wrong schedule) is reported as not-found, the same as a
// missing candidate.
func (s *AvailabilityService) SetAvailability(ctx context.Context, scheduleID, userID string, candidateID int64, value int) (model.AvailabilityState, error) {
	state := model.AvailabilityState(value)
	if !state.Valid() {
		return 0, apperror.ValidationFailed("availability",
			fmt.Sprintf("availability must be 0, 1 or 2, got %d", value))
	}

	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return 0, err // not-found propagates as-is
	}
	if candidate.ScheduleID != scheduleID {
		return 0, apperror.NotFound("candidate", fmt.Sprintf("%d", candidateID))
	}

	a := &model.Availability{
		ScheduleID:  scheduleID,
		UserID:      userID,
		CandidateID: candidateID,
		State:       state,
	}
	if err := s.availabilities.Upsert(ctx, a); err != nil {
		s.logger.Error("failed to upsert availability",
			slog.String("scheduleID", scheduleID),
			slog.String("userID", userID),
			slog.Int64("candidateID", candidateID),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("setting availability: %w", err)
	}

	s.logger.Info("availability set",
		slog.String("scheduleID", scheduleID),
		slog.String("userID", userID),
		slog.Int64("candidateID", candidateID),
		slog.String("state", state.String()),
	)

	return state, nil
}

// SetComment stores (or replaces) one user's comment on a schedule and
// returns the stored text. Comments longer than MaxCommentLength runes are
// truncated rather than rejected, mirroring the schedule-name rule.
//
// The schedule must exist; commenting into the void is a not-found, which
// also covers the race where the schedule was deleted while the comment box
// was open.
func (s *AvailabilityService) SetComment(ctx context.Context, scheduleID, userID, comment string) (string, error) {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("checking schedule: %w", err)
	}

	comment = strings.TrimSpace(comment)
	if runes := []rune(comment); len(runes) > MaxCommentLength {
		comment = string(runes[:MaxCommentLength])
	}

	c := &model.Comment{
		ScheduleID: scheduleID,
		UserID:     userID,
		Comment:    comment,
	}
	if err := s.comments.Upsert(ctx, c); err != nil {
		s.logger.Error("failed to upsert comment",
			slog.String("scheduleID", scheduleID),
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("setting comment: %w", err)
	}

	s.logger.Info("comment set",
		slog.String("scheduleID", scheduleID),
		slog.String("userID", userID),
	)

	return comment, nil
}
