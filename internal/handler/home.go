package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/schedule-arranger/internal/auth"
	"github.com/sakif/schedule-arranger/internal/repository"
	"github.com/sakif/schedule-arranger/internal/service"
)

// HomeHandler renders the landing page.
//
// HTTP: GET /
//
// The route sits behind OptionalAuth: anonymous visitors get the pitch and a
// login link; signed-in users also get the list of schedules they created,
// most recently updated first.
type HomeHandler struct {
	schedules *service.ScheduleService
	users     repository.UserRepository
	renderer  *Renderer
	logger    *slog.Logger
}

// NewHomeHandler creates a HomeHandler.
func NewHomeHandler(
	schedules *service.ScheduleService,
	users repository.UserRepository,
	renderer *Renderer,
	logger *slog.Logger,
) *HomeHandler {
	return &HomeHandler{
		schedules: schedules,
		users:     users,
		renderer:  renderer,
		logger:    logger,
	}
}

// HandleHome serves the home page.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Title": "Schedule Arranger"}

	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		user, err := h.users.GetByID(r.Context(), userID)
		if err != nil {
			// A stale token pointing at a missing user renders the page
			// anonymously rather than failing it.
			h.logger.Warn("home: session user not found", slog.String("userID", userID))
		} else {
			schedules, err := h.schedules.ListByCreator(r.Context(), userID)
			if err != nil {
				writeError(w, err)
				return
			}
			data["User"] = user
			data["Schedules"] = schedules
		}
	}

	h.renderer.Render(w, "home", data)
}
