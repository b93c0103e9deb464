package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, id, username string) {
	t.Helper()
	err := s.CreateUser(context.Background(), &User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
}

func seedReview(t *testing.T, s *Store, id, userID string, createdAt time.Time) {
	t.Helper()
	err := s.CreateReview(context.Background(), &Review{
		ID:             id,
		UserID:         userID,
		SpotifyTrackID: "track-" + id,
		TrackName:      "Track " + id,
		ArtistName:     "Artist",
		Rating:         4,
		CreatedAt:      createdAt,
	})
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}
}

func TestReviewOwnedBy_EnforcesOwnership(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "alice")
	seedUser(t, s, "u2", "bob")
	seedReview(t, s, "r1", "u1", time.Now().UTC())

	review, err := s.ReviewOwnedBy(ctx, "r1", "u1")
	if err != nil {
		t.Fatalf("ReviewOwnedBy() error = %v", err)
	}
	if review.SpotifyTrackID != "track-r1" {
		t.Errorf("SpotifyTrackID = %v, want track-r1", review.SpotifyTrackID)
	}

	// Another user's review looks like a missing one.
	if _, err := s.ReviewOwnedBy(ctx, "r1", "u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReviewOwnedBy() for non-owner error = %v, want ErrNotFound", err)
	}
}

func TestUpdateReview_OnlyTouchesOwnedRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "alice")
	seedUser(t, s, "u2", "bob")
	seedReview(t, s, "r1", "u1", time.Now().UTC())

	err := s.UpdateReview(ctx, "r1", "u2", map[string]any{"rating": 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateReview() by non-owner error = %v, want ErrNotFound", err)
	}

	if err := s.UpdateReview(ctx, "r1", "u1", map[string]any{"rating": 5}); err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}

	review, err := s.ReviewOwnedBy(ctx, "r1", "u1")
	if err != nil {
		t.Fatalf("ReviewOwnedBy() error = %v", err)
	}
	if review.Rating != 5 {
		t.Errorf("Rating = %v, want 5", review.Rating)
	}
}

func TestDeleteReview(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "alice")
	seedReview(t, s, "r1", "u1", time.Now().UTC())

	if err := s.DeleteReview(ctx, "r1", "u1"); err != nil {
		t.Fatalf("DeleteReview() error = %v", err)
	}

	if _, err := s.ReviewOwnedBy(ctx, "r1", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReviewOwnedBy() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again reports not found.
	if err := s.DeleteReview(ctx, "r1", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteReview() error = %v, want ErrNotFound", err)
	}
}

func TestListReviews_NewestFirstWithUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "alice")
	seedUser(t, s, "u2", "bob")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedReview(t, s, "r1", "u1", base)
	seedReview(t, s, "r2", "u2", base.Add(time.Hour))
	seedReview(t, s, "r3", "u1", base.Add(2*time.Hour))

	reviews, err := s.ListReviews(ctx)
	if err != nil {
		t.Fatalf("ListReviews() error = %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("len(reviews) = %d, want 3", len(reviews))
	}

	wantOrder := []string{"r3", "r2", "r1"}
	for i, want := range wantOrder {
		if reviews[i].ID != want {
			t.Errorf("reviews[%d].ID = %v, want %v", i, reviews[i].ID, want)
		}
	}

	if reviews[0].User.Username != "alice" {
		t.Errorf("reviews[0].User.Username = %v, want alice", reviews[0].User.Username)
	}
	if reviews[1].User.Username != "bob" {
		t.Errorf("reviews[1].User.Username = %v, want bob", reviews[1].User.Username)
	}
}

func TestUpdatedAtStaysNullUntilEdit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "alice")
	seedReview(t, s, "r1", "u1", time.Now().UTC())

	review, err := s.ReviewOwnedBy(ctx, "r1", "u1")
	if err != nil {
		t.Fatalf("ReviewOwnedBy() error = %v", err)
	}
	if review.UpdatedAt != nil {
		t.Errorf("UpdatedAt = %v, want nil before first edit", review.UpdatedAt)
	}

	now := time.Now().UTC()
	err = s.UpdateReview(ctx, "r1", "u1", map[string]any{"rating": 2, "updated_at": now})
	if err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}

	review, err = s.ReviewOwnedBy(ctx, "r1", "u1")
	if err != nil {
		t.Fatalf("ReviewOwnedBy() error = %v", err)
	}
	if review.UpdatedAt == nil {
		t.Error("UpdatedAt = nil, want set after edit")
	}
}
