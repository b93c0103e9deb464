// Package middleware provides HTTP middleware for session authentication,
// CORS handling, rate limiting, and request context management.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tunecircle/backend/internal/logging"
	"github.com/tunecircle/backend/internal/services"
)

type contextKey string

const (
	// ClaimsKey is the context key for storing session claims.
	ClaimsKey contextKey = "claims"

	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "tc_session"
)

// AuthMiddleware validates the session token and adds the claims to the
// request context. The token is read from the session cookie, or from an
// Authorization: Bearer header for cookie-less API clients.
// Returns 401 for missing/invalid tokens.
func AuthMiddleware(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := sessionToken(r)
			if tokenString == "" {
				logging.LogSecurityEvent(r.Context(), logging.SecurityEventMissingSession, "missing session token")
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			claims, err := authService.ValidateSessionToken(tokenString)
			if err != nil {
				logging.LogSecurityEvent(r.Context(), logging.SecurityEventInvalidSession, "invalid or expired session token")
				http.Error(w, `{"error":"invalid session"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionToken extracts the raw token from the cookie or bearer header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// GetClaims retrieves the session claims from the request context.
// Returns nil if no claims are present (e.g., unauthenticated request).
func GetClaims(ctx context.Context) *services.SessionClaims {
	claims, _ := ctx.Value(ClaimsKey).(*services.SessionClaims)
	return claims
}
