package spotify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/tunecircle/backend/internal/services"
)

// Authenticator wraps the Spotify OAuth2 authorization-code flow.
type Authenticator struct {
	auth *spotifyauth.Authenticator
}

// NewAuthenticator creates an Authenticator with the scopes the application
// needs: profile, email, top items, play history, saved library, and private
// playlists.
func NewAuthenticator(clientID, clientSecret, redirectURL string) *Authenticator {
	auth := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithRedirectURL(redirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadEmail,
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserTopRead,
			spotifyauth.ScopeUserReadRecentlyPlayed,
			spotifyauth.ScopeUserLibraryRead,
			spotifyauth.ScopePlaylistReadPrivate,
		),
	)
	return &Authenticator{auth: auth}
}

// AuthURL returns the provider authorization URL for the given CSRF state.
func (a *Authenticator) AuthURL(state string) string {
	return a.auth.AuthURL(state)
}

// Exchange trades the callback's authorization code for a token set.
func (a *Authenticator) Exchange(ctx context.Context, state string, r *http.Request) (*oauth2.Token, error) {
	token, err := a.auth.Token(ctx, state, r)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

// Identity fetches the signed-in account's id, email, and display name using
// the freshly issued token.
func (a *Authenticator) Identity(ctx context.Context, token *oauth2.Token) (services.SpotifyIdentity, error) {
	client := spotify.New(a.auth.Client(ctx, token))
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return services.SpotifyIdentity{}, fmt.Errorf("getting provider identity: %w", err)
	}
	return services.SpotifyIdentity{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}

// Refresher exchanges refresh tokens at Spotify's token endpoint. It is the
// services.TokenRefresher used in production.
type Refresher struct {
	conf *oauth2.Config
}

// NewRefresher creates a Refresher with the application's client credentials.
func NewRefresher(clientID, clientSecret string) *Refresher {
	return &Refresher{conf: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}}
}

// Refresh requests a new access token. The provider may or may not reissue
// the refresh token; the returned token carries whatever it sent.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("requesting refreshed token: %w", err)
	}
	return token, nil
}
