package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/schedule-arranger/internal/auth"
	"github.com/sakif/schedule-arranger/internal/repository"
	"github.com/sakif/schedule-arranger/internal/service"
)

// AuthHandler manages the GitHub OAuth login flow and session management.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLoginPage      → render the login page with its GitHub link
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → receive the code, complete the login, issue JWT
//   - HandleLogout         → clear the JWT cookie and return home
//   - HandleMe             → return the logged-in user's profile as JSON
type AuthHandler struct {
	github   *auth.GitHubProvider
	authSvc  *service.AuthService
	users    repository.UserRepository
	renderer *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	github *auth.GitHubProvider,
	authSvc *service.AuthService,
	users repository.UserRepository,
	renderer *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github:   github,
		authSvc:  authSvc,
		users:    users,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleLoginPage renders the login page.
//
// HTTP: GET /login
//
// When a valid session already exists (OptionalAuth put a userID in the
// context) the page greets the user by name instead of only showing the
// GitHub link.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Title": "Login"}

	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		if user, err := h.users.GetByID(r.Context(), userID); err == nil {
			data["User"] = user
		}
	}

	h.renderer.Render(w, "login", data)
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// We generate a random state string and store it in a short-lived cookie.
// When GitHub calls back, HandleGitHubCallback verifies the state matches.
// This proves the callback completes a flow this server started.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile
//  3. AuthService upserts the user and issues the JWT
//  4. Set the JWT as an HttpOnly cookie
//  5. Redirect to where the user was headed before login (loginFrom cookie),
//     or the home page
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	// --- Step 1: Validate CSRF state ---
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Clear the state cookie — it's single-use
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// User denied the authorization request on GitHub
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// --- Step 2: Exchange code for GitHub user profile ---
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// --- Step 3: Upsert user + issue token ---
	result, err := h.authSvc.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// --- Step 4: Set the JWT cookie ---
	// HttpOnly: JavaScript can't read it (XSS protection).
	// SameSite=Lax: sent on top-level navigations, not cross-site POSTs.
	// Secure should be true in production (HTTPS only).
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// --- Step 5: Redirect back to where the user started ---
	// Only honour loginFrom values that are site-relative paths. Accepting
	// absolute URLs here would make the callback an open redirector: a
	// phishing mail could send victims through our login straight to an
	// attacker's site.
	target := "/"
	if c, err := r.Cookie(auth.LoginFromCookie); err == nil && strings.HasPrefix(c.Value, "/") && !strings.HasPrefix(c.Value, "//") {
		target = c.Value
	}
	http.SetCookie(w, &http.Cookie{
		Name:   auth.LoginFromCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleLogout clears the JWT cookie and redirects to the home page.
//
// HTTP: GET /logout
//
// Since sessions are stateless JWTs, "logout" just means deleting the
// client-side cookie. The token itself stays technically valid until expiry,
// but without the cookie the browser can't send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: Required (RequireAuth middleware sets userID in context)
//
// The schedule page script uses this to know which grid row is "you".
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("HandleMe: user not found", slog.String("userID", userID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
