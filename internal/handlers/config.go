package handlers

import (
	"net/http"

	"github.com/tunecircle/backend/internal/config"
	"github.com/tunecircle/backend/internal/models"
)

// ConfigHandler exposes the non-sensitive configuration the frontend needs.
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a ConfigHandler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// Get returns the public configuration.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.PublicConfigResponse{
		SpotifyLoginEnabled: h.cfg.SpotifyLoginEnabled(),
	})
}
