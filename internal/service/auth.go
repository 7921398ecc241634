// Package service — authentication business logic.
//
// AuthService sits between the HTTP auth handler and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)
//
// The app uses GitHub OAuth as its only identity provider — users never set a
// password here. By the time this service runs, the auth handler has already
// completed the OAuth code exchange; this layer's job is to map the external
// GitHub identity onto an internal account and mint the session token.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/schedule-arranger/internal/auth"
	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/sakif/schedule-arranger/internal/repository"
)

// AuthService handles the authentication business logic.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub completes a GitHub login.
//
//  1. Upsert the user: first login creates the account, later logins refresh
//     the username and avatar (GitHub handles can change; our internal ID
//     never does).
//  2. Issue a JWT access token with the internal user ID as its subject.
//
// GitHub guarantees the numeric ID is stable and unique, so the upsert keys
// on it without any conflict handling of its own.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	user := &model.User{
		GitHubID:  ghUser.ID,
		Username:  ghUser.Login,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Error("failed to upsert user on login",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		s.logger.Error("failed to generate token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("generating token: %w", err)
	}

	s.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}
