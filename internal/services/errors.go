// Package services contains the core business logic: local and Spotify
// sign-in, the Spotify token lifecycle, and review management.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrLockedOut is returned while an account is inside its lockout window.
	ErrLockedOut = errors.New("account temporarily locked")

	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNoVerifiedEmail is returned when the OAuth provider supplies no
	// email claim, so no account can be matched or provisioned.
	ErrNoVerifiedEmail = errors.New("no verified email from provider")

	// ErrNotConnected is returned when a user has no usable Spotify tokens.
	ErrNotConnected = errors.New("spotify account not connected")

	// ErrRefreshFailed is returned when the provider rejects the stored
	// refresh token. The user must re-link their account.
	ErrRefreshFailed = errors.New("spotify token refresh failed")
)

// ValidationError reports a field-level problem with user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
