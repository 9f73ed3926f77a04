package tasks

import (
	"context"

	"github.com/desertthunder/playlift/internal/models"
)

// ListPlaylists returns the playlists sessionID owns on p, refreshing its credential first.
func ListPlaylists(ctx context.Context, creds Credentials, factory ServiceFactory, sessionID string, p models.Platform) ([]models.Playlist, error) {
	if _, err := creds.Valid(ctx, sessionID, p); err != nil {
		return nil, err
	}
	svc, err := factory.New(ctx, p, creds.TokenSource(ctx, sessionID, p))
	if err != nil {
		return nil, err
	}
	return svc.ListPlaylists(ctx)
}

// ListPlaylists lists a session's playlists with the engine's credentials and services.
func (e *Engine) ListPlaylists(ctx context.Context, sessionID string, p models.Platform) ([]models.Playlist, error) {
	playlists, err := ListPlaylists(ctx, e.creds, e.factory, sessionID, p)
	if err != nil {
		e.logger.Warn("Failed to list playlists", "platform", p, "error", err)
		return nil, err
	}
	return playlists, nil
}
