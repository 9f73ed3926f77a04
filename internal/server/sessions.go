package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// Sessions reads and forgets stored credentials. auth.Manager is the production implementation.
type Sessions interface {
	Lookup(ctx context.Context, sessionID string, p models.Platform) (*models.Credential, error)
	Logout(ctx context.Context, sessionID string) error
}

// SessionHandler reports and clears per-session login state.
type SessionHandler struct {
	sessions Sessions
	logger   *log.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(s Sessions, logger *log.Logger) *SessionHandler {
	return &SessionHandler{sessions: s, logger: logger}
}

type loginState struct {
	Spotify bool `json:"spotify_logged_in"`
	YouTube bool `json:"youtube_logged_in"`
	Both    bool `json:"both_logged_in"`
}

// Check handles GET /api/auth/check?session_id=...
func (h *SessionHandler) Check(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session_id")
	if session == "" {
		writeError(w, fmt.Errorf("%w: session_id is required", shared.ErrMissingArgument))
		return
	}

	var state loginState
	for _, p := range []models.Platform{models.Spotify, models.YouTube} {
		_, err := h.sessions.Lookup(r.Context(), session, p)
		switch {
		case err == nil:
			if p == models.Spotify {
				state.Spotify = true
			} else {
				state.YouTube = true
			}
		case errors.Is(err, shared.ErrNotAuthenticated):
		default:
			h.logger.Error("Credential lookup failed", "platform", p, "error", err)
			writeError(w, err)
			return
		}
	}
	state.Both = state.Spotify && state.YouTube
	writeJSON(w, http.StatusOK, state)
}

// Logout handles POST /api/auth/logout?session_id=...
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session_id")
	if session == "" {
		writeError(w, fmt.Errorf("%w: session_id is required", shared.ErrMissingArgument))
		return
	}

	if err := h.sessions.Logout(r.Context(), session); err != nil {
		h.logger.Error("Logout failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Logged out successfully"})
}
