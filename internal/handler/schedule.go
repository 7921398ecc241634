package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/schedule-arranger/internal/apperror"
	"github.com/sakif/schedule-arranger/internal/auth"
	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository"
	"github.com/sakif/schedule-arranger/internal/service"
)

// ScheduleHandler manages schedule pages and the schedule lifecycle routes.
//
// ROUTES:
//
//	GET  /schedules/new              → new-schedule form
//	POST /schedules                  → create, then redirect to the detail page
//	GET  /schedules/{scheduleID}     → detail page with the availability grid
//	GET  /schedules/{scheduleID}/edit → edit form (owner only)
//	POST /schedules/{scheduleID}     → update (?edit=1) or delete (?delete=1)
//
// Everything under /schedules sits behind RequireAuth — the services can
// assume the requester identity is real.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	grid      *service.GridService
	users     repository.UserRepository
	renderer  *Renderer
	logger    *slog.Logger
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(
	schedules *service.ScheduleService,
	grid *service.GridService,
	users repository.UserRepository,
	renderer *Renderer,
	logger *slog.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		grid:      grid,
		users:     users,
		renderer:  renderer,
		logger:    logger,
	}
}

// HandleNewForm renders the new-schedule form.
//
// HTTP: GET /schedules/new
func (h *ScheduleHandler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.viewer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	h.renderer.Render(w, "new", map[string]any{
		"Title": "New schedule",
		"User":  viewer,
	})
}

// HandleCreate creates a schedule from the submitted form and redirects to
// its detail page.
//
// HTTP: POST /schedules
// Form: scheduleName, memo, candidates (newline-delimited)
//
// POST-REDIRECT-GET: the 303 makes the browser GET the new schedule's page,
// so a refresh re-renders the grid instead of re-submitting the form and
// creating a duplicate schedule.
func (h *ScheduleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.BadRequest("malformed form body"))
		return
	}

	schedule, err := h.schedules.Create(r.Context(),
		userID,
		r.PostFormValue("scheduleName"),
		r.PostFormValue("memo"),
		r.PostFormValue("candidates"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, "/schedules/"+schedule.ID, http.StatusSeeOther)
}

// HandleDetail renders a schedule's availability grid.
//
// HTTP: GET /schedules/{scheduleID}
//
// Any authenticated user may view any schedule — the unguessable ID is the
// access control. The grid always contains the viewer's own row, first, even
// before they have answered anything.
func (h *ScheduleHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")

	viewer, err := h.viewer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	schedule, err := h.schedules.Get(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}

	grid, err := h.grid.Build(r.Context(), scheduleID, model.Viewer{
		ID:       viewer.ID,
		Username: viewer.Username,
	})
	if err != nil {
		h.logger.Error("failed to build grid",
			slog.String("scheduleID", scheduleID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	h.renderer.Render(w, "schedule", map[string]any{
		"Title":    schedule.Name,
		"User":     viewer,
		"Schedule": schedule,
		"Grid":     grid,
	})
}

// HandleEditForm renders the edit form, owner only.
//
// HTTP: GET /schedules/{scheduleID}/edit
//
// A non-owner gets a 404, not a 403 — same masking as the mutation routes.
func (h *ScheduleHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")
	userID, _ := auth.UserIDFromContext(r.Context())

	viewer, err := h.viewer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	schedule, err := h.schedules.Get(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}
	if schedule.CreatedBy != userID {
		writeError(w, apperror.NotFoundOrForbidden("schedule", scheduleID))
		return
	}

	candidates, err := h.schedules.Candidates(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.renderer.Render(w, "edit", map[string]any{
		"Title":      "Edit " + schedule.Name,
		"User":       viewer,
		"Schedule":   schedule,
		"Candidates": candidates,
	})
}

// HandleMutate updates or deletes a schedule depending on the mode flag.
//
// HTTP: POST /schedules/{scheduleID}?edit=1   → update, redirect to detail
// HTTP: POST /schedules/{scheduleID}?delete=1 → delete aggregate, redirect /
//
// EXACTLY ONE FLAG:
// The two flags are mutually exclusive mode switches on the same route.
// Neither set, or both set, is a client error — guessing which destructive
// operation the client meant would be worse than rejecting the request.
func (h *ScheduleHandler) HandleMutate(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")
	userID, _ := auth.UserIDFromContext(r.Context())

	edit := r.URL.Query().Get("edit") == "1"
	del := r.URL.Query().Get("delete") == "1"

	switch {
	case edit && !del:
		if err := r.ParseForm(); err != nil {
			writeError(w, apperror.BadRequest("malformed form body"))
			return
		}
		err := h.schedules.Update(r.Context(),
			scheduleID,
			userID,
			r.PostFormValue("scheduleName"),
			r.PostFormValue("memo"),
			r.PostFormValue("candidates"),
		)
		if err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, "/schedules/"+scheduleID, http.StatusSeeOther)

	case del && !edit:
		if err := h.schedules.Delete(r.Context(), scheduleID, userID); err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		writeError(w, apperror.BadRequest("exactly one of edit=1 or delete=1 is required"))
	}
}

// viewer loads the authenticated user's record for page rendering.
// RequireAuth guarantees a userID is present; the DB lookup turns it into a
// username for the grid's self row and the page header.
func (h *ScheduleHandler) viewer(r *http.Request) (*model.User, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, apperror.NotFound("user", "")
	}
	return h.users.GetByID(r.Context(), userID)
}
