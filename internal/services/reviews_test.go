package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tunecircle/backend/internal/models"
	"github.com/tunecircle/backend/internal/store"
)

type fakeReviewStore struct {
	reviews map[string]*store.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[string]*store.Review)}
}

func (f *fakeReviewStore) CreateReview(ctx context.Context, review *store.Review) error {
	copied := *review
	f.reviews[review.ID] = &copied
	return nil
}

func (f *fakeReviewStore) ReviewOwnedBy(ctx context.Context, id, ownerID string) (*store.Review, error) {
	r, ok := f.reviews[id]
	if !ok || r.UserID != ownerID {
		return nil, store.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReviewStore) UpdateReview(ctx context.Context, id, ownerID string, updates map[string]any) error {
	r, ok := f.reviews[id]
	if !ok || r.UserID != ownerID {
		return store.ErrNotFound
	}
	if rating, ok := updates["rating"].(int); ok {
		r.Rating = rating
	}
	if name, ok := updates["track_name"].(string); ok {
		r.TrackName = name
	}
	if artist, ok := updates["artist_name"].(string); ok {
		r.ArtistName = artist
	}
	if ts, ok := updates["updated_at"].(time.Time); ok {
		r.UpdatedAt = &ts
	}
	return nil
}

func (f *fakeReviewStore) DeleteReview(ctx context.Context, id, ownerID string) error {
	r, ok := f.reviews[id]
	if !ok || r.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewStore) ListReviews(ctx context.Context) ([]store.Review, error) {
	out := make([]store.Review, 0, len(f.reviews))
	for _, r := range f.reviews {
		out = append(out, *r)
	}
	return out, nil
}

type countingNotifier struct {
	published int
}

func (n *countingNotifier) Publish() { n.published++ }

func TestCreateReview_RejectsOutOfRangeRating(t *testing.T) {
	service := NewReviewService(newFakeReviewStore(), nil)

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := service.Create(context.Background(), "u1", models.CreateReviewRequest{
			SpotifyTrackID: "t1",
			TrackName:      "Song",
			ArtistName:     "Artist",
			Rating:         rating,
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Create() with rating %d error = %v, want ValidationError", rating, err)
		}
	}
}

func TestCreateReview_RejectsBlankTrack(t *testing.T) {
	service := NewReviewService(newFakeReviewStore(), nil)

	_, err := service.Create(context.Background(), "u1", models.CreateReviewRequest{
		SpotifyTrackID: "  ",
		TrackName:      "Song",
		Rating:         3,
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("Create() with blank track id error = %v, want ValidationError", err)
	}
}

func TestCreateReview_StoresAndNotifies(t *testing.T) {
	reviews := newFakeReviewStore()
	notifier := &countingNotifier{}
	service := NewReviewService(reviews, notifier)

	review, err := service.Create(context.Background(), "u1", models.CreateReviewRequest{
		SpotifyTrackID: "t1",
		TrackName:      "Song",
		ArtistName:     "Artist",
		Rating:         5,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if review.ID == "" {
		t.Error("Create() should assign an ID")
	}
	if review.UserID != "u1" {
		t.Errorf("UserID = %v, want u1", review.UserID)
	}
	if review.CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped")
	}
	if review.UpdatedAt != nil {
		t.Errorf("UpdatedAt = %v, want nil on creation", review.UpdatedAt)
	}
	if notifier.published != 1 {
		t.Errorf("published = %d, want 1", notifier.published)
	}
}

func TestUpdateReview_PartialEdit(t *testing.T) {
	reviews := newFakeReviewStore()
	notifier := &countingNotifier{}
	service := NewReviewService(reviews, notifier)

	created, err := service.Create(context.Background(), "u1", models.CreateReviewRequest{
		SpotifyTrackID: "t1",
		TrackName:      "Song",
		ArtistName:     "Artist",
		Rating:         2,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	notifier.published = 0

	rating := 4
	updated, err := service.Update(context.Background(), "u1", created.ID, models.UpdateReviewRequest{
		Rating: &rating,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Rating != 4 {
		t.Errorf("Rating = %d, want 4", updated.Rating)
	}
	if updated.TrackName != "Song" {
		t.Errorf("TrackName = %v, want Song (unchanged)", updated.TrackName)
	}
	if notifier.published != 1 {
		t.Errorf("published = %d, want 1", notifier.published)
	}
}

func TestUpdateReview_RejectsInvalidRating(t *testing.T) {
	service := NewReviewService(newFakeReviewStore(), nil)

	rating := 9
	_, err := service.Update(context.Background(), "u1", "r1", models.UpdateReviewRequest{
		Rating: &rating,
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("Update() error = %v, want ValidationError", err)
	}
}

func TestUpdateReview_EmptyEditDoesNotNotify(t *testing.T) {
	reviews := newFakeReviewStore()
	notifier := &countingNotifier{}
	service := NewReviewService(reviews, notifier)

	created, err := service.Create(context.Background(), "u1", models.CreateReviewRequest{
		SpotifyTrackID: "t1",
		TrackName:      "Song",
		Rating:         3,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	notifier.published = 0

	got, err := service.Update(context.Background(), "u1", created.ID, models.UpdateReviewRequest{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Rating != 3 {
		t.Errorf("Rating = %d, want 3", got.Rating)
	}
	if notifier.published != 0 {
		t.Errorf("published = %d, want 0 for no-op edit", notifier.published)
	}
}

func TestUpdateReview_NotOwner(t *testing.T) {
	reviews := newFakeReviewStore()
	service := NewReviewService(reviews, nil)

	created, err := service.Create(context.Background(), "u1", models.CreateReviewRequest{
		SpotifyTrackID: "t1",
		TrackName:      "Song",
		Rating:         3,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rating := 1
	_, err = service.Update(context.Background(), "u2", created.ID, models.UpdateReviewRequest{Rating: &rating})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update() by non-owner error = %v, want ErrNotFound", err)
	}
}

func TestDeleteReview_Notifies(t *testing.T) {
	reviews := newFakeReviewStore()
	notifier := &countingNotifier{}
	service := NewReviewService(reviews, notifier)

	created, err := service.Create(context.Background(), "u1", models.CreateReviewRequest{
		SpotifyTrackID: "t1",
		TrackName:      "Song",
		Rating:         3,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	notifier.published = 0

	if err := service.Delete(context.Background(), "u1", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if notifier.published != 1 {
		t.Errorf("published = %d, want 1", notifier.published)
	}

	if err := service.Delete(context.Background(), "u1", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
