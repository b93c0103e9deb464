package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tunecircle/backend/internal/models"
	"github.com/tunecircle/backend/internal/services"
)

func TestSpotifyHandler_ProfileWithoutConnection(t *testing.T) {
	env := newTestEnv(t)
	userID := registerUser(t, env, "alice@example.com")
	handler := NewSpotifyHandler(services.NewSpotifyService(env.store, nil, nil))

	router := authedRouter(&services.SessionClaims{UserID: userID}, func(r chi.Router) {
		r.Get("/spotify/profile", handler.Profile)
	})

	req := httptest.NewRequest(http.MethodGet, "/spotify/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Profile status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp models.ProfileResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Connected {
		t.Error("Connected = true, want false for unlinked account")
	}
}

func TestSpotifyHandler_SearchWithoutConnection(t *testing.T) {
	env := newTestEnv(t)
	userID := registerUser(t, env, "alice@example.com")
	handler := NewSpotifyHandler(services.NewSpotifyService(env.store, nil, nil))

	router := authedRouter(&services.SessionClaims{UserID: userID}, func(r chi.Router) {
		r.Get("/spotify/search", handler.Search)
	})

	req := httptest.NewRequest(http.MethodGet, "/spotify/search?q=radiohead", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Search status = %d, want %d for unlinked account", rec.Code, http.StatusUnauthorized)
	}
}

func TestDedupTracks(t *testing.T) {
	tracks := []models.Track{
		{SpotifyID: "a", Name: "First"},
		{SpotifyID: "b", Name: "Second"},
		{SpotifyID: "a", Name: "First again"},
		{SpotifyID: "c", Name: "Third"},
		{SpotifyID: "b", Name: "Second again"},
	}

	got := dedupTracks(tracks)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantOrder := []string{"a", "b", "c"}
	for i, want := range wantOrder {
		if got[i].SpotifyID != want {
			t.Errorf("got[%d].SpotifyID = %v, want %v", i, got[i].SpotifyID, want)
		}
	}
	// First occurrence wins.
	if got[0].Name != "First" {
		t.Errorf("got[0].Name = %v, want First", got[0].Name)
	}
}

func TestQueryLimit(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/x", 0},
		{"/x?limit=25", 25},
		{"/x?limit=abc", 0},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.url, nil)
		if got := queryLimit(req); got != tt.want {
			t.Errorf("queryLimit(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}
