package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// Playlists lists a session's own playlists. tasks.Engine is the production implementation.
type Playlists interface {
	ListPlaylists(ctx context.Context, sessionID string, p models.Platform) ([]models.Playlist, error)
}

// PlaylistHandler serves playlist listings so callers can pick a transfer source.
type PlaylistHandler struct {
	playlists Playlists
	logger    *log.Logger
}

// NewPlaylistHandler creates a PlaylistHandler.
func NewPlaylistHandler(p Playlists, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlists: p, logger: logger}
}

// List handles GET /api/{platform}/playlists?session_id=...
func (h *PlaylistHandler) List(w http.ResponseWriter, r *http.Request) {
	platform, err := models.ParsePlatform(mux.Vars(r)["platform"])
	if err != nil {
		writeError(w, err)
		return
	}
	session := r.URL.Query().Get("session_id")
	if session == "" {
		writeError(w, fmt.Errorf("%w: session_id is required", shared.ErrMissingArgument))
		return
	}

	playlists, err := h.playlists.ListPlaylists(r.Context(), session, platform)
	if err != nil {
		writeError(w, err)
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}
