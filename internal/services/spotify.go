package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/tunecircle/backend/internal/models"
	"github.com/tunecircle/backend/internal/store"
)

// refreshSkew is the lead time before token expiry at which a refresh is
// attempted, so a token cannot expire mid-request.
const refreshSkew = 5 * time.Minute

const defaultLimit = 20

// Catalog is the narrow read surface of the Spotify Web API the application
// uses. Implementations are bound to a single access token.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	GetTrack(ctx context.Context, id string) (*models.Track, error)
	TopTracks(ctx context.Context, limit int) ([]models.Track, error)
	TopArtists(ctx context.Context, limit int) ([]models.Artist, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]models.Track, error)
	CurrentProfile(ctx context.Context) (*models.SpotifyProfile, error)
}

// CatalogFactory constructs a Catalog bound to the given access token.
type CatalogFactory func(ctx context.Context, accessToken string) Catalog

// TokenRefresher exchanges a refresh token for a new access token at the
// provider's token endpoint.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// SpotifyService owns the per-user token lifecycle and exposes the catalog
// read operations. Tokens are refreshed proactively when within refreshSkew
// of expiry; catalog-call failures degrade to empty results and never
// propagate to the page layer.
type SpotifyService struct {
	users      UserStore
	refresher  TokenRefresher
	newCatalog CatalogFactory
	now        func() time.Time

	mu           sync.Mutex
	refreshLocks map[string]*sync.Mutex
}

// NewSpotifyService creates a SpotifyService.
func NewSpotifyService(users UserStore, refresher TokenRefresher, newCatalog CatalogFactory) *SpotifyService {
	return &SpotifyService{
		users:        users,
		refresher:    refresher,
		newCatalog:   newCatalog,
		now:          time.Now,
		refreshLocks: make(map[string]*sync.Mutex),
	}
}

// HasConnection reports whether the user has both an access and a refresh
// token stored. Presence-only: an expired access token still counts, because
// the token layer refreshes transparently on the next catalog call.
func (s *SpotifyService) HasConnection(ctx context.Context, userID string) bool {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return false
	}
	return present(user.SpotifyAccessToken) && present(user.SpotifyRefreshToken)
}

// Search returns tracks matching query, truncated to limit. A blank query
// returns an empty result without touching the provider.
func (s *SpotifyService) Search(ctx context.Context, userID, query string, limit int) ([]models.Track, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Track{}, nil
	}
	limit = clampLimit(limit)

	catalog, err := s.catalogFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	tracks, err := catalog.SearchTracks(ctx, query, limit)
	if err != nil {
		s.logDegraded(ctx, "search", userID, err)
		return []models.Track{}, nil
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// GetTrack returns a single track, or nil when the id is blank or the lookup
// fails.
func (s *SpotifyService) GetTrack(ctx context.Context, userID, trackID string) (*models.Track, error) {
	if strings.TrimSpace(trackID) == "" {
		return nil, nil
	}
	catalog, err := s.catalogFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	track, err := catalog.GetTrack(ctx, trackID)
	if err != nil {
		s.logDegraded(ctx, "get_track", userID, err)
		return nil, nil
	}
	return track, nil
}

// TopTracks returns the user's most-listened tracks over the medium-term
// ranking window.
func (s *SpotifyService) TopTracks(ctx context.Context, userID string, limit int) ([]models.Track, error) {
	catalog, err := s.catalogFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	tracks, err := catalog.TopTracks(ctx, clampLimit(limit))
	if err != nil {
		s.logDegraded(ctx, "top_tracks", userID, err)
		return []models.Track{}, nil
	}
	return tracks, nil
}

// TopArtists returns the user's most-listened artists over the medium-term
// ranking window.
func (s *SpotifyService) TopArtists(ctx context.Context, userID string, limit int) ([]models.Artist, error) {
	catalog, err := s.catalogFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	artists, err := catalog.TopArtists(ctx, clampLimit(limit))
	if err != nil {
		s.logDegraded(ctx, "top_artists", userID, err)
		return []models.Artist{}, nil
	}
	return artists, nil
}

// RecentlyPlayed returns the user's play history, most recent first. Repeat
// plays of the same track are included; display layers deduplicate.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, userID string, limit int) ([]models.Track, error) {
	catalog, err := s.catalogFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	tracks, err := catalog.RecentlyPlayed(ctx, clampLimit(limit))
	if err != nil {
		s.logDegraded(ctx, "recently_played", userID, err)
		return []models.Track{}, nil
	}
	return tracks, nil
}

// Profile returns the user's Spotify profile, or nil when the call fails.
func (s *SpotifyService) Profile(ctx context.Context, userID string) (*models.SpotifyProfile, error) {
	catalog, err := s.catalogFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := catalog.CurrentProfile(ctx)
	if err != nil {
		s.logDegraded(ctx, "profile", userID, err)
		return nil, nil
	}
	return profile, nil
}

// catalogFor produces a catalog client bound to a usable access token for the
// user, refreshing first when the stored token is expired or about to expire.
func (s *SpotifyService) catalogFor(ctx context.Context, userID string) (Catalog, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !present(user.SpotifyAccessToken) {
		return nil, ErrNotConnected
	}

	accessToken := *user.SpotifyAccessToken
	if s.expiring(user.SpotifyTokenExpiration) {
		accessToken, err = s.refreshTokens(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	return s.newCatalog(ctx, accessToken), nil
}

// refreshTokens performs a provider refresh for the user and persists the new
// credential set. A per-user lock coalesces concurrent in-process refreshes:
// the loser re-reads the row and finds a fresh token already stored.
func (s *SpotifyService) refreshTokens(ctx context.Context, userID string) (string, error) {
	lock := s.refreshLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading user: %w", err)
	}
	if !s.expiring(user.SpotifyTokenExpiration) && present(user.SpotifyAccessToken) {
		return *user.SpotifyAccessToken, nil
	}
	if !present(user.SpotifyRefreshToken) {
		return "", ErrNotConnected
	}

	token, err := s.refresher.Refresh(ctx, *user.SpotifyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	tokens := store.SpotifyTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if err := s.users.UpdateSpotifyTokens(ctx, userID, tokens); err != nil {
		return "", fmt.Errorf("storing refreshed tokens: %w", err)
	}

	slog.InfoContext(ctx, "spotify token refreshed",
		slog.String("user_id", userID),
		slog.Time("expires_at", token.Expiry))
	return token.AccessToken, nil
}

func (s *SpotifyService) refreshLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.refreshLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.refreshLocks[userID] = lock
	}
	return lock
}

func (s *SpotifyService) expiring(expiration *time.Time) bool {
	if expiration == nil {
		return false
	}
	return !s.now().Before(expiration.Add(-refreshSkew))
}

func (s *SpotifyService) logDegraded(ctx context.Context, op, userID string, err error) {
	slog.WarnContext(ctx, "spotify call failed, returning empty result",
		slog.String("operation", op),
		slog.String("user_id", userID),
		slog.Any("error", err))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 50 {
		return defaultLimit
	}
	return limit
}

func present(s *string) bool {
	return s != nil && *s != ""
}
