package store

import "time"

// User is an identity principal. The Spotify* columns are nullable: they are
// only populated once the user links a Spotify account, and are rewritten on
// every sign-in and every transparent token refresh.
type User struct {
	ID             string `gorm:"primaryKey"`
	Username       string
	Email          string `gorm:"uniqueIndex"`
	PasswordHash   string
	EmailConfirmed bool
	FailedLogins   int
	LockoutUntil   *time.Time

	SpotifyID              *string
	SpotifyAccessToken     *string
	SpotifyRefreshToken    *string
	SpotifyTokenExpiration *time.Time
	SpotifyDisplayName     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Review is a star rating of a Spotify track, owned by a single user.
// UpdatedAt stays NULL until the review is first edited, so timestamps are
// managed by the service layer rather than gorm's auto-tracking.
type Review struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"index"`
	User           User   `gorm:"foreignKey:UserID"`
	SpotifyTrackID string
	TrackName      string
	ArtistName     string
	AlbumName      *string
	AlbumImageURL  *string
	Rating         int
	CreatedAt      time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt      *time.Time `gorm:"autoUpdateTime:false"`
}
