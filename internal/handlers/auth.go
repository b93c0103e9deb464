// Package handlers contains the HTTP layer: request decoding, error mapping,
// and response encoding over the service layer.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/tunecircle/backend/internal/config"
	"github.com/tunecircle/backend/internal/logging"
	"github.com/tunecircle/backend/internal/middleware"
	"github.com/tunecircle/backend/internal/models"
	"github.com/tunecircle/backend/internal/services"
	"github.com/tunecircle/backend/internal/store"
)

// stateCookieName holds the OAuth CSRF state between the begin redirect and
// the provider callback.
const stateCookieName = "tc_oauth_state"

// SpotifyOAuth is the slice of the OAuth flow the auth handler needs.
type SpotifyOAuth interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, state string, r *http.Request) (*oauth2.Token, error)
	Identity(ctx context.Context, token *oauth2.Token) (services.SpotifyIdentity, error)
}

// AuthHandler manages registration, login, logout, and the Spotify OAuth flow.
type AuthHandler struct {
	authService *services.AuthService
	oauth       SpotifyOAuth
	cfg         *config.Config
}

// NewAuthHandler creates an AuthHandler. oauth may be nil when Spotify login
// is not configured.
func NewAuthHandler(authService *services.AuthService, oauth SpotifyOAuth, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		oauth:       oauth,
		cfg:         cfg,
	}
}

// Register creates a local account from an email and password.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := h.authService.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, services.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to register", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, models.RegisterResponse{UserID: userID})
}

// Login verifies local credentials and issues a session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLockedOut):
			logging.LogSecurityEvent(r.Context(), logging.SecurityEventLockedOut, "login attempt on locked account")
			writeError(w, http.StatusLocked, "account temporarily locked, try again later")
		case errors.Is(err, services.ErrInvalidCredentials):
			logging.LogSecurityEvent(r.Context(), logging.SecurityEventInvalidCredentials, "invalid email or password")
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to sign in", err)
		}
		return
	}

	if err := h.issueSession(w, r, user); err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{UserID: user.ID, Username: user.Username})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// SpotifyBegin starts the OAuth authorization-code flow. The CSRF state is
// stored in a short-lived cookie and verified on callback.
func (h *AuthHandler) SpotifyBegin(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil || !h.cfg.SpotifyLoginEnabled() {
		writeError(w, http.StatusNotFound, "spotify login not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.AuthURL(state), http.StatusFound)
}

// SpotifyCallback completes the OAuth flow: verify state, exchange the code,
// resolve the account, and issue a session cookie.
func (h *AuthHandler) SpotifyCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil || !h.cfg.SpotifyLoginEnabled() {
		writeError(w, http.StatusNotFound, "spotify login not configured")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventOAuthStateMismatch, "oauth state missing or mismatched")
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	// State is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	token, err := h.oauth.Exchange(r.Context(), stateCookie.Value, r)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "failed to exchange authorization code", err)
		return
	}

	identity, err := h.oauth.Identity(r.Context(), token)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "failed to fetch spotify profile", err)
		return
	}

	user, err := h.authService.CompleteSpotifyLogin(r.Context(), identity, store.SpotifyTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoVerifiedEmail) {
			writeError(w, http.StatusBadRequest, "spotify account has no email")
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to complete spotify login", err)
		return
	}

	if err := h.issueSession(w, r, user); err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, user *store.User) error {
	token, err := h.authService.GenerateSessionToken(user.ID, user.Username)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
