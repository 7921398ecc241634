package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "userID", id), ANY package that knows the string
// "userID" can read or shadow your value. A package-private key type means
// only this package can read or write userID values in the context.
type contextKey string

const userIDKey contextKey = "userID"

// LoginFromCookie remembers where an unauthenticated user was headed so the
// OAuth callback can send them back there after login.
const LoginFromCookie = "loginFrom"

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the JWT from the "token" HttpOnly cookie, validates it, and stores
// the userID in the request context.
//
// TWO FAILURE MODES, TWO RESPONSES:
// A person clicking a schedule link without a session should land on the
// login page and come back to that schedule afterwards — so page navigations
// (GET) get a loginFrom cookie and a redirect. The JSON endpoints (API reads
// and the toggle-button POSTs) are called by script, where a redirect would
// be silently followed into an HTML page; they get a plain 401 instead.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				if r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/api/") {
					http.SetCookie(w, &http.Cookie{
						Name:     LoginFromCookie,
						Value:    r.URL.RequestURI(),
						Path:     "/",
						MaxAge:   600,
						HttpOnly: true,
						SameSite: http.SameSiteLaxMode,
					})
					http.Redirect(w, r, "/login", http.StatusFound)
					return
				}
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			// Store userID in context so handlers can read it
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity if a valid token is present, but
// does NOT block the request if it's missing or invalid.
//
// Used on the home and login pages, which render for everyone but show the
// user's own schedules (or their username) when a session exists. Handlers
// check via UserIDFromContext — ("", false) means anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			// Always continue — no 401 even if no token
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) if the request is anonymous.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the JWT cookie and validates it.
// This is a private helper shared by RequireAuth and OptionalAuth.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie("token")
	if err != nil {
		// http.ErrNoCookie — not an error, just anonymous
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
