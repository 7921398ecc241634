package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/schedule-arranger/internal/auth"
	"github.com/sakif/schedule-arranger/internal/handler"
	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository/sqlite"
	"github.com/sakif/schedule-arranger/internal/service"
)

// testApp is a fully wired application over an in-memory database, routed
// exactly like production so middleware, URL params and redirects all behave.
type testApp struct {
	router *chi.Mux
	db     *sqlite.DB
	tokens *auth.TokenService
}

// newTestApp assembles the same dependency graph as the server package, with
// an in-memory database and the real templates from web/templates.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	// Parsing the real templates here also guards against a template typo
	// only surfacing in production boot.
	renderer, err := handler.NewRenderer("../../web/templates", logger)
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}

	github := auth.NewGitHubProvider("test-client", "test-secret", "http://localhost/auth/github/callback")

	users := db.Users()
	authService := service.NewAuthService(users, tokens, logger)
	scheduleService := service.NewScheduleService(db.Schedules(), db.Candidates(), logger)
	gridService := service.NewGridService(db.Candidates(), db.Availabilities(), db.Comments(), logger)
	availabilityService := service.NewAvailabilityService(db.Schedules(), db.Candidates(), db.Availabilities(), db.Comments(), logger)

	authHandler := handler.NewAuthHandler(github, authService, users, renderer, logger)
	homeHandler := handler.NewHomeHandler(scheduleService, users, renderer, logger)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, gridService, users, renderer, logger)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService, logger)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Get("/", homeHandler.HandleHome)
		r.Get("/login", authHandler.HandleLoginPage)
	})
	router.Get("/logout", authHandler.HandleLogout)
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/api/me", authHandler.HandleMe)
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/new", scheduleHandler.HandleNewForm)
			r.Post("/", scheduleHandler.HandleCreate)
			r.Get("/{scheduleID}", scheduleHandler.HandleDetail)
			r.Get("/{scheduleID}/edit", scheduleHandler.HandleEditForm)
			r.Post("/{scheduleID}", scheduleHandler.HandleMutate)
			r.Post("/{scheduleID}/users/{userID}/candidates/{candidateID}", availabilityHandler.HandleSetAvailability)
			r.Post("/{scheduleID}/users/{userID}/comments", availabilityHandler.HandleSetComment)
		})
	})

	return &testApp{router: router, db: db, tokens: tokens}
}

// login creates a user and returns it with a valid session cookie.
func (a *testApp) login(t *testing.T, githubID int64, username string) (*model.User, *http.Cookie) {
	t.Helper()

	user := &model.User{
		GitHubID:  githubID,
		Username:  username,
		AvatarURL: "https://example.com/avatar.png",
	}
	if err := a.db.Users().Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}

	token, err := a.tokens.Generate(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return user, &http.Cookie{Name: "token", Value: token}
}

// do routes one request through the full middleware stack.
func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}
