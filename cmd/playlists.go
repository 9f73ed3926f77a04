package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/playlift/internal/formatter"
	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
	"github.com/desertthunder/playlift/internal/tasks"
)

// Playlists lists the playlists a session owns on one platform.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	platform, err := models.ParsePlatform(cmd.StringArg("platform"))
	if err != nil {
		return err
	}
	session := cmd.String("session")
	if session == "" {
		return fmt.Errorf("%w: --session is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	_, manager := r.credentialManager(db)
	r.logger.Info("listing playlists", "platform", platform)

	playlists, err := tasks.ListPlaylists(ctx, manager, r.serviceFactory(), session, platform)
	if err != nil {
		return err
	}
	if limit := int(cmd.Int("limit")); limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		if playlists == nil {
			playlists = []models.Playlist{}
		}
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No %s playlists owned by session %s\n", platform.Title(), session)
	}
	if err := r.writePlain("Found %d %s playlists:\n\n%s\n", len(playlists), platform.Title(), formatter.PlaylistTable(playlists)); err != nil {
		return err
	}
	return r.writePlain("\nTransfer one with: playlift transfer run --source <ID> ...\n")
}
