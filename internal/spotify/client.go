// Package spotify implements the catalog and OAuth interfaces against the
// Spotify Web API using the zmb3 client.
package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/tunecircle/backend/internal/models"
	"github.com/tunecircle/backend/internal/services"
)

type catalog struct {
	api *spotify.Client
}

// NewCatalog returns a catalog client bound to the given access token. It is
// a services.CatalogFactory.
func NewCatalog(ctx context.Context, accessToken string) services.Catalog {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	return &catalog{api: spotify.New(httpClient)}
}

func (c *catalog) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if result.Tracks == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		tracks = append(tracks, fullTrack(t))
	}
	return tracks, nil
}

func (c *catalog) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	t, err := c.api.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("getting track %s: %w", id, err)
	}
	track := fullTrack(*t)
	return &track, nil
}

func (c *catalog) TopTracks(ctx context.Context, limit int) ([]models.Track, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx,
		spotify.Limit(limit),
		spotify.Timerange(spotify.MediumTermRange))
	if err != nil {
		return nil, fmt.Errorf("getting top tracks: %w", err)
	}

	tracks := make([]models.Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		tracks = append(tracks, fullTrack(t))
	}
	return tracks, nil
}

func (c *catalog) TopArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	page, err := c.api.CurrentUsersTopArtists(ctx,
		spotify.Limit(limit),
		spotify.Timerange(spotify.MediumTermRange))
	if err != nil {
		return nil, fmt.Errorf("getting top artists: %w", err)
	}

	artists := make([]models.Artist, 0, len(page.Artists))
	for _, a := range page.Artists {
		artists = append(artists, models.Artist{
			SpotifyID: string(a.ID),
			Name:      a.Name,
			ImageURL:  firstImage(a.Images),
		})
	}
	return artists, nil
}

func (c *catalog) RecentlyPlayed(ctx context.Context, limit int) ([]models.Track, error) {
	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{Limit: spotify.Numeric(limit)})
	if err != nil {
		return nil, fmt.Errorf("getting recently played: %w", err)
	}

	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, simpleTrack(item.Track))
	}
	return tracks, nil
}

func (c *catalog) CurrentProfile(ctx context.Context) (*models.SpotifyProfile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}
	return &models.SpotifyProfile{
		SpotifyID:   user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		ImageURL:    firstImage(user.Images),
	}, nil
}

func fullTrack(t spotify.FullTrack) models.Track {
	return models.Track{
		SpotifyID:  string(t.ID),
		Name:       t.Name,
		Artist:     joinArtists(t.Artists),
		Album:      t.Album.Name,
		ImageURL:   firstImage(t.Album.Images),
		DurationMS: int(t.Duration),
	}
}

func simpleTrack(t spotify.SimpleTrack) models.Track {
	return models.Track{
		SpotifyID:  string(t.ID),
		Name:       t.Name,
		Artist:     joinArtists(t.Artists),
		Album:      t.Album.Name,
		ImageURL:   firstImage(t.Album.Images),
		DurationMS: int(t.Duration),
	}
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
