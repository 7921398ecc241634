// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where every
// dependency is assembled in one place:
//
//	sqlite.DB → per-table stores → services → handlers → routes
//
// Each layer only receives what it needs: services get repository interfaces
// (not the concrete sqlite stores), handlers get services. The handlers never
// touch the database; the services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/schedule-arranger/internal/auth"
	"github.com/sakif/schedule-arranger/internal/handler"
	"github.com/sakif/schedule-arranger/internal/middleware"
	sqliteRepo "github.com/sakif/schedule-arranger/internal/repository/sqlite"
	"github.com/sakif/schedule-arranger/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port        int
	TemplateDir string
	DBPath      string

	// JWTSecret signs session tokens. Must be set; the server refuses to
	// start without it rather than silently running with open auth.
	JWTSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection; graceful shutdown closes it after
// in-flight requests finish, flushing the WAL and releasing the file lock.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, builds the dependency graph, and
// registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // clean up the DB if wiring fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /                           → home page (list of own schedules)
//	GET  /login                      → login page
//	GET  /logout                     → clear session, redirect home
//	GET  /auth/github/login          → begin GitHub OAuth
//	GET  /auth/github/callback       → complete GitHub OAuth
//	GET  /api/me                     → current user (JSON)
//	GET  /schedules/new              → new-schedule form
//	POST /schedules                  → create schedule
//	GET  /schedules/{id}             → availability grid page
//	GET  /schedules/{id}/edit        → edit form (owner only)
//	POST /schedules/{id}             → update (?edit=1) / delete (?delete=1)
//	POST /schedules/{id}/users/{uid}/candidates/{cid} → set availability cell
//	POST /schedules/{id}/users/{uid}/comments         → set comment
//
// MIDDLEWARE ORDER MATTERS — middleware executes in the order added:
// RequestID and RealIP first (so the logger can use them), then Recoverer
// (panics become 500s), then request logging, then per-group auth.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Shared infrastructure ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	github := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	// === Repositories (per-table sqlite stores) ===
	users := s.db.Users()
	schedules := s.db.Schedules()
	candidates := s.db.Candidates()
	availabilities := s.db.Availabilities()
	comments := s.db.Comments()

	// === Services ===
	authService := service.NewAuthService(users, tokens, s.logger)
	scheduleService := service.NewScheduleService(schedules, candidates, s.logger)
	gridService := service.NewGridService(candidates, availabilities, comments, s.logger)
	availabilityService := service.NewAvailabilityService(schedules, candidates, availabilities, comments, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(github, authService, users, renderer, s.logger)
	homeHandler := handler.NewHomeHandler(scheduleService, users, renderer, s.logger)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, gridService, users, renderer, s.logger)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService, s.logger)

	// === Public routes (identity optional) ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Get("/", homeHandler.HandleHome)
		r.Get("/login", authHandler.HandleLoginPage)
	})

	s.router.Get("/logout", authHandler.HandleLogout)
	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	// === Authenticated routes ===
	s.router.Group(func(r chi.Router) {
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

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// SHUTDOWN ORDER:
// 1. Stop accepting new connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (deferred — runs even on panic)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
