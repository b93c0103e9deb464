package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// CreateReview inserts a new review row.
func (s *Store) CreateReview(ctx context.Context, review *Review) error {
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}
	return nil
}

// ReviewOwnedBy retrieves a review only when it belongs to ownerID. A review
// owned by someone else is indistinguishable from a missing one.
func (s *Store) ReviewOwnedBy(ctx context.Context, id, ownerID string) (*Review, error) {
	var review Review
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying review: %w", err)
	}
	return &review, nil
}

// UpdateReview applies the given column updates to a review owned by ownerID.
// Returns ErrNotFound when no row matches both the id and the owner.
func (s *Store) UpdateReview(ctx context.Context, id, ownerID string, updates map[string]any) error {
	res := s.db.WithContext(ctx).
		Model(&Review{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReview removes a review owned by ownerID. Deleting an already-deleted
// or foreign review returns ErrNotFound.
func (s *Store) DeleteReview(ctx context.Context, id, ownerID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&Review{})
	if res.Error != nil {
		return fmt.Errorf("deleting review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReviews returns every review across all users, newest first, with the
// owning user preloaded for display identity. This backs the public feed.
func (s *Store) ListReviews(ctx context.Context) ([]Review, error) {
	var reviews []Review
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return reviews, nil
}
