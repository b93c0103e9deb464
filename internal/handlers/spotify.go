package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tunecircle/backend/internal/models"
	"github.com/tunecircle/backend/internal/services"
)

// SpotifyHandler exposes the catalog and listening-data endpoints. All of
// them require an authenticated session and a linked Spotify account.
type SpotifyHandler struct {
	spotifyService *services.SpotifyService
}

// NewSpotifyHandler creates a SpotifyHandler.
func NewSpotifyHandler(spotifyService *services.SpotifyService) *SpotifyHandler {
	return &SpotifyHandler{spotifyService: spotifyService}
}

// Search looks up tracks in the Spotify catalog by free-text query.
func (h *SpotifyHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	tracks, err := h.spotifyService.Search(r.Context(), claims.UserID, r.URL.Query().Get("q"), queryLimit(r))
	if err != nil {
		h.writeSpotifyError(w, r, err, "failed to search tracks")
		return
	}

	writeJSON(w, http.StatusOK, models.SearchResponse{Tracks: tracks})
}

// Track returns a single catalog track by its Spotify ID.
func (h *SpotifyHandler) Track(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	track, err := h.spotifyService.GetTrack(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeSpotifyError(w, r, err, "failed to load track")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}

	writeJSON(w, http.StatusOK, track)
}

// TopTracks returns the user's most-listened tracks.
func (h *SpotifyHandler) TopTracks(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	tracks, err := h.spotifyService.TopTracks(r.Context(), claims.UserID, queryLimit(r))
	if err != nil {
		h.writeSpotifyError(w, r, err, "failed to load top tracks")
		return
	}

	writeJSON(w, http.StatusOK, models.TopTracksResponse{Tracks: tracks})
}

// TopArtists returns the user's most-listened artists.
func (h *SpotifyHandler) TopArtists(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	artists, err := h.spotifyService.TopArtists(r.Context(), claims.UserID, queryLimit(r))
	if err != nil {
		h.writeSpotifyError(w, r, err, "failed to load top artists")
		return
	}

	writeJSON(w, http.StatusOK, models.TopArtistsResponse{Artists: artists})
}

// RecentlyPlayed returns the user's play history, most recent first. Repeat
// plays of the same track are collapsed to the first occurrence.
func (h *SpotifyHandler) RecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	tracks, err := h.spotifyService.RecentlyPlayed(r.Context(), claims.UserID, queryLimit(r))
	if err != nil {
		h.writeSpotifyError(w, r, err, "failed to load play history")
		return
	}

	writeJSON(w, http.StatusOK, models.RecentlyPlayedResponse{Tracks: dedupTracks(tracks)})
}

// Profile returns the user's Spotify connection status plus top tracks and
// artists. An unlinked account yields connected=false, not an error.
func (h *SpotifyHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(w, r)
	if claims == nil {
		return
	}

	if !h.spotifyService.HasConnection(r.Context(), claims.UserID) {
		writeJSON(w, http.StatusOK, models.ProfileResponse{Connected: false})
		return
	}

	resp := models.ProfileResponse{Connected: true}
	if profile, err := h.spotifyService.Profile(r.Context(), claims.UserID); err == nil && profile != nil {
		resp.DisplayName = profile.DisplayName
		resp.SpotifyID = profile.SpotifyID
	}
	if tracks, err := h.spotifyService.TopTracks(r.Context(), claims.UserID, 0); err == nil {
		resp.TopTracks = tracks
	}
	if artists, err := h.spotifyService.TopArtists(r.Context(), claims.UserID, 0); err == nil {
		resp.TopArtists = artists
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeSpotifyError maps token-lifecycle failures to 401 so clients know to
// re-link, and everything else to 500.
func (h *SpotifyHandler) writeSpotifyError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, services.ErrNotConnected) {
		writeError(w, http.StatusUnauthorized, "spotify account not connected")
		return
	}
	if errors.Is(err, services.ErrRefreshFailed) {
		writeError(w, http.StatusUnauthorized, "spotify session expired, reconnect your account")
		return
	}
	writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, message, err)
}

// dedupTracks keeps the first occurrence of each track ID, preserving order.
func dedupTracks(tracks []models.Track) []models.Track {
	seen := make(map[string]bool, len(tracks))
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if seen[t.SpotifyID] {
			continue
		}
		seen[t.SpotifyID] = true
		out = append(out, t)
	}
	return out
}

// queryLimit parses the optional limit query parameter. Invalid or missing
// values return 0, which the service replaces with its default.
func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}
