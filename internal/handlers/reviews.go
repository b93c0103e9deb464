package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tunecircle/backend/internal/models"
	"github.com/tunecircle/backend/internal/services"
	"github.com/tunecircle/backend/internal/store"
)

// ReviewHandler manages review CRUD and the public feed.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Feed returns every review across all users, newest first. No authentication
// required.
func (h *ReviewHandler) Feed(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.Feed(r.Context())
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load reviews", err)
		return
	}

	resp := models.ReviewFeedResponse{Reviews: make([]models.ReviewResponse, 0, len(reviews))}
	for _, review := range reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(review))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create stores a new review owned by the authenticated user.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	var req models.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.Create(r.Context(), claims.UserID, req)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to create review", err)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewResponse(*review))
}

// Get returns one of the authenticated user's own reviews.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	review, err := h.reviewService.Get(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load review", err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(*review))
}

// Update applies a partial edit to one of the authenticated user's reviews.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	var req models.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "review not found")
		default:
			writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to update review", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(*review))
}

// Delete removes one of the authenticated user's reviews.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	if err := h.reviewService.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to delete review", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toReviewResponse(review store.Review) models.ReviewResponse {
	resp := models.ReviewResponse{
		ID:             review.ID,
		UserID:         review.UserID,
		SpotifyTrackID: review.SpotifyTrackID,
		TrackName:      review.TrackName,
		ArtistName:     review.ArtistName,
		AlbumName:      review.AlbumName,
		AlbumImageURL:  review.AlbumImageURL,
		Rating:         review.Rating,
		CreatedAt:      review.CreatedAt,
		UpdatedAt:      review.UpdatedAt,
	}
	if review.User.Username != "" {
		resp.ReviewerName = review.User.Username
	}
	return resp
}
