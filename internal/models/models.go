package models

import "time"

// Auth

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Public configuration

type PublicConfigResponse struct {
	SpotifyLoginEnabled bool `json:"spotifyLoginEnabled"`
}

// Reviews

type CreateReviewRequest struct {
	SpotifyTrackID string  `json:"spotifyTrackId"`
	TrackName      string  `json:"trackName"`
	ArtistName     string  `json:"artistName"`
	AlbumName      *string `json:"albumName,omitempty"`
	AlbumImageURL  *string `json:"albumImageUrl,omitempty"`
	Rating         int     `json:"rating"`
}

// UpdateReviewRequest carries a partial edit: nil fields are left unchanged.
type UpdateReviewRequest struct {
	TrackName     *string `json:"trackName,omitempty"`
	ArtistName    *string `json:"artistName,omitempty"`
	AlbumName     *string `json:"albumName,omitempty"`
	AlbumImageURL *string `json:"albumImageUrl,omitempty"`
	Rating        *int    `json:"rating,omitempty"`
}

type ReviewResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	ReviewerName   string     `json:"reviewerName,omitempty"`
	SpotifyTrackID string     `json:"spotifyTrackId"`
	TrackName      string     `json:"trackName"`
	ArtistName     string     `json:"artistName"`
	AlbumName      *string    `json:"albumName,omitempty"`
	AlbumImageURL  *string    `json:"albumImageUrl,omitempty"`
	Rating         int        `json:"rating"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

type ReviewFeedResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
}

// Spotify data. Track and Artist are projections of live catalog responses
// and are never persisted.

type Track struct {
	SpotifyID  string `json:"spotifyId"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	DurationMS int    `json:"durationMs,omitempty"`
}

type Artist struct {
	SpotifyID string `json:"spotifyId"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type SpotifyProfile struct {
	SpotifyID   string `json:"spotifyId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type SearchResponse struct {
	Tracks []Track `json:"tracks"`
}

type TopTracksResponse struct {
	Tracks []Track `json:"tracks"`
}

type TopArtistsResponse struct {
	Artists []Artist `json:"artists"`
}

type RecentlyPlayedResponse struct {
	Tracks []Track `json:"tracks"`
}

type ProfileResponse struct {
	Connected   bool     `json:"connected"`
	DisplayName string   `json:"displayName,omitempty"`
	SpotifyID   string   `json:"spotifyId,omitempty"`
	TopTracks   []Track  `json:"topTracks,omitempty"`
	TopArtists  []Artist `json:"topArtists,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
