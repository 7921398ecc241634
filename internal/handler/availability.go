package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/schedule-arranger/internal/apperror"
	"github.com/sakif/schedule-arranger/internal/service"
)

// AvailabilityHandler serves the two asynchronous cell-write endpoints the
// schedule page script calls:
//
//	POST /schedules/{scheduleID}/users/{userID}/candidates/{candidateID}
//	     form: availability=0|1|2   → {"status":"OK","availability":2}
//	POST /schedules/{scheduleID}/users/{userID}/comments
//	     form: comment=...          → {"status":"OK","comment":"..."}
//
// Both respond with a minimal acknowledgment carrying the stored value, so
// the page can update the clicked button (or comment cell) in place without
// re-rendering the grid.
//
// The {userID} segment names whose cell is written, and is deliberately NOT
// required to match the session user — see AvailabilityService for the
// reasoning. Authentication itself is still required by the route middleware.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
	logger       *slog.Logger
}

// NewAvailabilityHandler creates an AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		logger:       logger,
	}
}

// availabilityAck is the response body for a successful cell write.
type availabilityAck struct {
	Status       string `json:"status"`
	Availability int    `json:"availability"`
}

// commentAck is the response body for a successful comment write.
type commentAck struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// HandleSetAvailability stores one availability cell.
//
// The toggle button cycles Absent → Undecided → Present and POSTs the next
// integer; we validate, store, and echo the stored value back.
func (h *AvailabilityHandler) HandleSetAvailability(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")
	userID := chi.URLParam(r, "userID")

	candidateID, err := strconv.ParseInt(chi.URLParam(r, "candidateID"), 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("candidateId", "candidate id must be an integer"))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.BadRequest("malformed form body"))
		return
	}

	value, err := strconv.Atoi(r.PostFormValue("availability"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("availability", "availability must be an integer"))
		return
	}

	state, err := h.availability.SetAvailability(r.Context(), scheduleID, userID, candidateID, value)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, availabilityAck{
		Status:       "OK",
		Availability: int(state),
	})
}

// HandleSetComment stores (or replaces) a user's comment on a schedule.
func (h *AvailabilityHandler) HandleSetComment(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")
	userID := chi.URLParam(r, "userID")

	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.BadRequest("malformed form body"))
		return
	}

	stored, err := h.availability.SetComment(r.Context(), scheduleID, userID, r.PostFormValue("comment"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commentAck{
		Status:  "OK",
		Comment: stored,
	})
}
