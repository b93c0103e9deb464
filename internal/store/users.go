package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SpotifyTokens holds the credential set Spotify issues on sign-in or refresh.
// RefreshToken may be empty on a refresh response; the stored one is kept.
type SpotifyTokens struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// UserByID retrieves a user by primary key.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

// UserByEmail retrieves a user by email address.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.firstUser(ctx, "email = ?", email)
}

// UserBySpotifyID retrieves the user whose account is linked to the given
// Spotify identity.
func (s *Store) UserBySpotifyID(ctx context.Context, spotifyID string) (*User, error) {
	return s.firstUser(ctx, "spotify_id = ?", spotifyID)
}

func (s *Store) firstUser(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// LinkSpotify attaches a Spotify identity to the user and stores the issued
// tokens. The email is marked confirmed: the provider only supplies verified
// addresses.
func (s *Store) LinkSpotify(ctx context.Context, userID, spotifyID, displayName string, tokens SpotifyTokens) error {
	updates := map[string]any{
		"spotify_id":               spotifyID,
		"spotify_display_name":     displayName,
		"spotify_access_token":     tokens.AccessToken,
		"spotify_refresh_token":    tokens.RefreshToken,
		"spotify_token_expiration": tokens.Expiry,
		"email_confirmed":          true,
	}
	return s.updateUser(ctx, userID, updates)
}

// UpdateSpotifyTokens stores a fresh access token and expiry for the user.
// The refresh token is only replaced when the provider reissued one.
func (s *Store) UpdateSpotifyTokens(ctx context.Context, userID string, tokens SpotifyTokens) error {
	updates := map[string]any{
		"spotify_access_token":     tokens.AccessToken,
		"spotify_token_expiration": tokens.Expiry,
	}
	if tokens.RefreshToken != "" {
		updates["spotify_refresh_token"] = tokens.RefreshToken
	}
	return s.updateUser(ctx, userID, updates)
}

// RecordLoginFailure persists the failed-attempt counter and, once the
// threshold is crossed, the lockout deadline.
func (s *Store) RecordLoginFailure(ctx context.Context, userID string, failedLogins int, lockoutUntil *time.Time) error {
	return s.updateUser(ctx, userID, map[string]any{
		"failed_logins": failedLogins,
		"lockout_until": lockoutUntil,
	})
}

// ResetLoginFailures clears the failed-attempt counter after a successful
// sign-in.
func (s *Store) ResetLoginFailures(ctx context.Context, userID string) error {
	return s.updateUser(ctx, userID, map[string]any{
		"failed_logins": 0,
		"lockout_until": nil,
	})
}

func (s *Store) updateUser(ctx context.Context, userID string, updates map[string]any) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
