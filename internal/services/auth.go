package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tunecircle/backend/internal/store"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
	minPasswordLen  = 8
)

// UserStore is the slice of the persistence layer the auth and Spotify
// services depend on.
type UserStore interface {
	CreateUser(ctx context.Context, user *store.User) error
	UserByID(ctx context.Context, id string) (*store.User, error)
	UserByEmail(ctx context.Context, email string) (*store.User, error)
	UserBySpotifyID(ctx context.Context, spotifyID string) (*store.User, error)
	LinkSpotify(ctx context.Context, userID, spotifyID, displayName string, tokens store.SpotifyTokens) error
	UpdateSpotifyTokens(ctx context.Context, userID string, tokens store.SpotifyTokens) error
	RecordLoginFailure(ctx context.Context, userID string, failedLogins int, lockoutUntil *time.Time) error
	ResetLoginFailures(ctx context.Context, userID string) error
}

// SpotifyIdentity is what the OAuth callback learns about the signed-in
// Spotify account.
type SpotifyIdentity struct {
	ID          string
	Email       string
	DisplayName string
}

// SessionClaims is the JWT payload identifying an authenticated user.
type SessionClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"name"`
	jwt.RegisteredClaims
}

// AuthService handles registration, local and Spotify sign-in, and session
// token generation/validation.
type AuthService struct {
	users           UserStore
	secret          []byte
	sessionDuration time.Duration
	now             func() time.Time
}

// NewAuthService creates an AuthService with the given signing secret and
// session lifetime.
func NewAuthService(users UserStore, secret string, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		secret:          []byte(secret),
		sessionDuration: sessionDuration,
		now:             time.Now,
	}
}

// Register creates a local account. An empty username defaults to the part of
// the email before the "@".
func (s *AuthService) Register(ctx context.Context, email, username, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return "", validationErr("email", "must be a valid email address")
	}
	if len(password) < minPasswordLen {
		return "", validationErr("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if username == "" {
		username = email[:strings.Index(email, "@")]
	}

	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// SignIn verifies local credentials. Five consecutive failures lock the
// account for fifteen minutes; a successful sign-in clears the counter.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*store.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.LockoutUntil != nil && s.now().Before(*user.LockoutUntil) {
		return nil, ErrLockedOut
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		failed := user.FailedLogins + 1
		var lockoutUntil *time.Time
		if failed >= maxFailedLogins {
			until := s.now().Add(lockoutDuration)
			lockoutUntil = &until
		}
		// A failed write here must not mask the credential failure.
		_ = s.users.RecordLoginFailure(ctx, user.ID, failed, lockoutUntil)
		return nil, ErrInvalidCredentials
	}

	if user.FailedLogins > 0 || user.LockoutUntil != nil {
		if err := s.users.ResetLoginFailures(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("resetting login failures: %w", err)
		}
	}
	return user, nil
}

// CompleteSpotifyLogin finishes the OAuth callback. Order of resolution:
// an account already linked to this Spotify identity, then an account with a
// matching email (which gets linked), then a freshly provisioned account.
// Every branch persists the issued tokens on the user row.
func (s *AuthService) CompleteSpotifyLogin(ctx context.Context, identity SpotifyIdentity, tokens store.SpotifyTokens) (*store.User, error) {
	if linked, err := s.users.UserBySpotifyID(ctx, identity.ID); err == nil {
		if err := s.users.UpdateSpotifyTokens(ctx, linked.ID, tokens); err != nil {
			return nil, fmt.Errorf("storing tokens: %w", err)
		}
		return linked, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up spotify identity: %w", err)
	}

	if identity.Email == "" {
		return nil, ErrNoVerifiedEmail
	}
	email := strings.ToLower(identity.Email)

	existing, err := s.users.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.LinkSpotify(ctx, existing.ID, identity.ID, identity.DisplayName, tokens); err != nil {
			return nil, fmt.Errorf("linking spotify identity: %w", err)
		}
		return s.users.UserByID(ctx, existing.ID)

	case errors.Is(err, store.ErrNotFound):
		// The provider's email claim is verified, so the new account starts
		// out confirmed.
		user := &store.User{
			ID:             uuid.NewString(),
			Username:       email,
			Email:          email,
			EmailConfirmed: true,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("provisioning account: %w", err)
		}
		if err := s.users.LinkSpotify(ctx, user.ID, identity.ID, identity.DisplayName, tokens); err != nil {
			return nil, fmt.Errorf("linking spotify identity: %w", err)
		}
		return s.users.UserByID(ctx, user.ID)

	default:
		return nil, fmt.Errorf("looking up email: %w", err)
	}
}

// GenerateSessionToken creates a signed JWT for the given user.
func (s *AuthService) GenerateSessionToken(userID, username string) (string, error) {
	claims := SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tunecircle",
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.sessionDuration)),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateSessionToken verifies the JWT signature and expiry, returning the
// claims if valid.
func (s *AuthService) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
