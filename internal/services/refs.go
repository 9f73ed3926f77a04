package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// ParsePlaylistRef accepts a raw playlist id or a share link for platform p.
//
// Spotify: "https://open.spotify.com/playlist/{id}?si=..." or "spotify:playlist:{id}".
// YouTube: any youtube.com URL carrying a "list" query parameter.
// An empty input yields the platform's default collection.
func ParsePlaylistRef(p models.Platform, raw string) (models.PlaylistRef, error) {
	raw = strings.TrimSpace(raw)
	ref := models.PlaylistRef{Platform: p}
	if raw == "" {
		return ref, nil
	}

	switch p {
	case models.Spotify:
		if id, ok := strings.CutPrefix(raw, "spotify:playlist:"); ok {
			ref.ID = id
			return ref, nil
		}
		if !strings.Contains(raw, "://") {
			ref.ID = raw
			return ref, nil
		}
		u, err := url.Parse(raw)
		if err != nil {
			return ref, fmt.Errorf("%w: bad playlist url %q", shared.ErrInvalidInput, raw)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+1 < len(parts); i++ {
			if parts[i] == "playlist" {
				ref.ID = parts[i+1]
				return ref, nil
			}
		}
		return ref, fmt.Errorf("%w: no playlist id in %q", shared.ErrInvalidInput, raw)

	case models.YouTube:
		if !strings.Contains(raw, "://") {
			ref.ID = raw
			return ref, nil
		}
		u, err := url.Parse(raw)
		if err != nil {
			return ref, fmt.Errorf("%w: bad playlist url %q", shared.ErrInvalidInput, raw)
		}
		if id := u.Query().Get("list"); id != "" {
			ref.ID = id
			return ref, nil
		}
		return ref, fmt.Errorf("%w: no list parameter in %q", shared.ErrInvalidInput, raw)
	}

	return ref, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, p)
}
