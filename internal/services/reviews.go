package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tunecircle/backend/internal/models"
	"github.com/tunecircle/backend/internal/store"
)

// ReviewStore is the slice of the persistence layer the review service
// depends on.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *store.Review) error
	ReviewOwnedBy(ctx context.Context, id, ownerID string) (*store.Review, error)
	UpdateReview(ctx context.Context, id, ownerID string, updates map[string]any) error
	DeleteReview(ctx context.Context, id, ownerID string) error
	ListReviews(ctx context.Context) ([]store.Review, error)
}

// FeedNotifier signals listeners that the public review feed changed.
type FeedNotifier interface {
	Publish()
}

// ReviewService manages star ratings. Every mutating or single-item read is
// owner-scoped; only the public feed spans users.
type ReviewService struct {
	reviews ReviewStore
	feed    FeedNotifier
	now     func() time.Time
}

// NewReviewService creates a ReviewService. feed may be nil when no live feed
// is wired up (tests).
func NewReviewService(reviews ReviewStore, feed FeedNotifier) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		feed:    feed,
		now:     time.Now,
	}
}

// Create validates and stores a new review owned by ownerID.
func (s *ReviewService) Create(ctx context.Context, ownerID string, in models.CreateReviewRequest) (*store.Review, error) {
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.SpotifyTrackID) == "" {
		return nil, validationErr("spotifyTrackId", "must not be empty")
	}
	if strings.TrimSpace(in.TrackName) == "" {
		return nil, validationErr("trackName", "must not be empty")
	}

	review := &store.Review{
		ID:             uuid.NewString(),
		UserID:         ownerID,
		SpotifyTrackID: in.SpotifyTrackID,
		TrackName:      in.TrackName,
		ArtistName:     in.ArtistName,
		AlbumName:      in.AlbumName,
		AlbumImageURL:  in.AlbumImageURL,
		Rating:         in.Rating,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	s.notify()
	return review, nil
}

// Update applies a partial edit to a review owned by ownerID. Unset fields
// are left unchanged; UpdatedAt is stamped on every successful edit.
func (s *ReviewService) Update(ctx context.Context, ownerID, reviewID string, in models.UpdateReviewRequest) (*store.Review, error) {
	updates := map[string]any{}
	if in.Rating != nil {
		if err := validateRating(*in.Rating); err != nil {
			return nil, err
		}
		updates["rating"] = *in.Rating
	}
	if in.TrackName != nil {
		if strings.TrimSpace(*in.TrackName) == "" {
			return nil, validationErr("trackName", "must not be empty")
		}
		updates["track_name"] = *in.TrackName
	}
	if in.ArtistName != nil {
		updates["artist_name"] = *in.ArtistName
	}
	if in.AlbumName != nil {
		updates["album_name"] = *in.AlbumName
	}
	if in.AlbumImageURL != nil {
		updates["album_image_url"] = *in.AlbumImageURL
	}
	if len(updates) == 0 {
		return s.reviews.ReviewOwnedBy(ctx, reviewID, ownerID)
	}
	updates["updated_at"] = s.now().UTC()

	if err := s.reviews.UpdateReview(ctx, reviewID, ownerID, updates); err != nil {
		return nil, err
	}
	s.notify()
	return s.reviews.ReviewOwnedBy(ctx, reviewID, ownerID)
}

// Delete removes a review owned by ownerID.
func (s *ReviewService) Delete(ctx context.Context, ownerID, reviewID string) error {
	if err := s.reviews.DeleteReview(ctx, reviewID, ownerID); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Get returns a review only when ownerID owns it.
func (s *ReviewService) Get(ctx context.Context, ownerID, reviewID string) (*store.Review, error) {
	return s.reviews.ReviewOwnedBy(ctx, reviewID, ownerID)
}

// Feed returns every review across all users, newest first.
func (s *ReviewService) Feed(ctx context.Context) ([]store.Review, error) {
	return s.reviews.ListReviews(ctx)
}

func (s *ReviewService) notify() {
	if s.feed != nil {
		s.feed.Publish()
	}
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return validationErr("rating", "must be between 1 and 5")
	}
	return nil
}
