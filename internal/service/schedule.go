// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
// In a well-structured Go web app, code is organised into three layers:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and return domain models and domain errors —
// they have zero knowledge of HTTP. Handlers translate in both directions.
//
// Each service receives repository INTERFACES, not the concrete sqlite types.
// Tests inject in-memory mocks; production injects the sqlite stores. Neither
// side of that swap touches the service code.
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

// Validation constants.
const (
	// MaxScheduleNameLength is where schedule names get cut off, counted in
	// runes so a multibyte name is truncated between characters, not inside one.
	MaxScheduleNameLength = 255

	// DefaultScheduleName stands in when the submitted name is blank after
	// trimming. A schedule must render with SOME title.
	DefaultScheduleName = "(undefined)"
)

// ScheduleService handles the lifecycle of a schedule and its candidate set:
// create, update (additive candidate growth), cascade delete, and reads.
type ScheduleService struct {
	schedules  repository.ScheduleRepository
	candidates repository.CandidateRepository
	logger     *slog.Logger
}

// NewScheduleService creates a ScheduleService.
func NewScheduleService(
	schedules repository.ScheduleRepository,
	candidates repository.CandidateRepository,
	logger *slog.Logger,
) *ScheduleService {
	return &ScheduleService{
		schedules:  schedules,
		candidates: candidates,
		logger:     logger,
	}
}

// Create makes a new schedule owned by ownerID, with one candidate per
// non-blank line of candidateLines. Zero candidates is legal — the grid just
// renders with no columns until an edit adds some.
//
// The returned schedule carries the generated unguessable ID; the handler
// redirects to /schedules/{id} with it.
func (s *ScheduleService) Create(ctx context.Context, ownerID, name, memo, candidateLines string) (*model.Schedule, error) {
	if ownerID == "" {
		return nil, apperror.ValidationFailed("owner", "schedule owner is required")
	}

	schedule := &model.Schedule{
		Name:      normalizeScheduleName(name),
		Memo:      memo,
		CreatedBy: ownerID,
	}

	if err := s.schedules.Create(ctx, schedule); err != nil {
		s.logger.Error("failed to create schedule",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating schedule: %w", err)
	}

	names := ParseCandidateNames(candidateLines)
	if _, err := s.candidates.CreateBatch(ctx, schedule.ID, names); err != nil {
		s.logger.Error("failed to create candidates",
			slog.String("scheduleID", schedule.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating candidates: %w", err)
	}

	s.logger.Info("schedule created",
		slog.String("scheduleID", schedule.ID),
		slog.String("owner", ownerID),
		slog.Int("candidates", len(names)),
	)

	return schedule, nil
}

// Update overwrites a schedule's name and memo and appends any new candidates
// parsed from candidateLines.
//
// ADDITIVE-ONLY CANDIDATES:
// An edit never removes or rewrites existing candidates — people may already
// have answered for them, and silently dropping columns would throw that
// history away. New lines are appended after the existing set, keeping the
// established column order stable.
//
// Only the creator may update. Anyone else gets the same not-found outcome a
// nonexistent schedule produces, so probing IDs reveals nothing.
func (s *ScheduleService) Update(ctx context.Context, scheduleID, requesterID, name, memo, candidateLines string) error {
	schedule, err := s.getOwned(ctx, scheduleID, requesterID)
	if err != nil {
		return err
	}

	schedule.Name = normalizeScheduleName(name)
	schedule.Memo = memo

	if err := s.schedules.Update(ctx, schedule); err != nil {
		s.logger.Error("failed to update schedule",
			slog.String("scheduleID", scheduleID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating schedule: %w", err)
	}

	if names := ParseCandidateNames(candidateLines); len(names) > 0 {
		if _, err := s.candidates.CreateBatch(ctx, scheduleID, names); err != nil {
			s.logger.Error("failed to append candidates",
				slog.String("scheduleID", scheduleID),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("appending candidates: %w", err)
		}
	}

	s.logger.Info("schedule updated", slog.String("scheduleID", scheduleID))
	return nil
}

// Delete removes a schedule together with its entire dependent aggregate —
// comments, availabilities and candidates all go with it, atomically. Only
// the creator may delete, with the same not-found masking as Update.
func (s *ScheduleService) Delete(ctx context.Context, scheduleID, requesterID string) error {
	if _, err := s.getOwned(ctx, scheduleID, requesterID); err != nil {
		return err
	}

	if err := s.schedules.DeleteAggregate(ctx, scheduleID); err != nil {
		s.logger.Error("failed to delete schedule aggregate",
			slog.String("scheduleID", scheduleID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting schedule: %w", err)
	}

	s.logger.Info("schedule deleted", slog.String("scheduleID", scheduleID))
	return nil
}

// Get returns a schedule with its creator's public identity attached.
// No ownership check — any authenticated user may view any schedule they
// hold the (unguessable) ID of.
func (s *ScheduleService) Get(ctx context.Context, scheduleID string) (*model.Schedule, error) {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err // already a proper apperror on not-found
	}
	return schedule, nil
}

// Candidates returns a schedule's candidates in column order.
func (s *ScheduleService) Candidates(ctx context.Context, scheduleID string) ([]model.Candidate, error) {
	candidates, err := s.candidates.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("failed to list candidates",
			slog.String("scheduleID", scheduleID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	return candidates, nil
}

// ListByCreator returns the schedules a user created, newest first.
func (s *ScheduleService) ListByCreator(ctx context.Context, userID string) ([]model.Schedule, error) {
	schedules, err := s.schedules.ListByCreator(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list schedules",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	return schedules, nil
}

// getOwned fetches a schedule and enforces the ownership guard shared by
// Update and Delete.
//
// THE GUARD IS ONE STRING COMPARISON:
// schedule.CreatedBy and requesterID are both canonical internal user IDs.
// Nothing is parsed or coerced here — identity flows through the app as a
// single type, so equality is exact.
//
// Both failure modes (no such schedule / not the owner) return the same
// NotFoundOrForbidden error on purpose: a distinct 403 would confirm that a
// guessed schedule ID exists.
func (s *ScheduleService) getOwned(ctx context.Context, scheduleID, requesterID string) (*model.Schedule, error) {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("schedule", scheduleID)
		}
		return nil, err
	}

	if schedule.CreatedBy != requesterID {
		s.logger.Warn("rejected mutation by non-owner",
			slog.String("scheduleID", scheduleID),
			slog.String("requester", requesterID),
		)
		return nil, apperror.NotFoundOrForbidden("schedule", scheduleID)
	}

	return schedule, nil
}

// normalizeScheduleName applies the name rules: trim, truncate to 255 runes,
// and fall back to the placeholder when nothing is left.
func normalizeScheduleName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultScheduleName
	}
	if runes := []rune(name); len(runes) > MaxScheduleNameLength {
		return string(runes[:MaxScheduleNameLength])
	}
	return name
}

// ParseCandidateNames turns the multi-line candidates form field into a clean
// list: split on newlines, trim each line, drop blanks. Order is preserved —
// the first line becomes the first (lowest-ID) column.
//
// Exported because the handler tests and the grid tests both feed forms
// through it to build fixtures the same way production does.
func ParseCandidateNames(lines string) []string {
	names := []string{}
	for _, line := range strings.Split(lines, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}
