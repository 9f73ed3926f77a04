// package services defines the platform adapters used by a transfer: reading tracks,
// searching for equivalents and writing matches.
package services

import (
	"context"
	"iter"

	"github.com/desertthunder/playlift/internal/models"
)

// pageSize is the number of items requested per page from either platform.
const pageSize = 50

// Source enumerates the tracks of a playlist.
type Source interface {
	// ListTracks lazily yields the playlist's tracks page by page. A non-nil error is yielded
	// at most once and ends the sequence. Items that cannot be read as an (artist, title) pair
	// are skipped and never yielded.
	ListTracks(ctx context.Context, ref models.PlaylistRef) iter.Seq2[models.Track, error]
}

// Searcher runs a single read-only search query on a destination platform.
type Searcher interface {
	Search(ctx context.Context, track models.Track, limit int) ([]models.Candidate, error)
}

// Writer adds a matched candidate to a destination playlist, or to the platform's default
// collection when target is empty. Writes are not deduplicated.
type Writer interface {
	Write(ctx context.Context, c models.Candidate, target models.PlaylistRef) error
}

// Lister enumerates the playlists owned by the authenticated user.
type Lister interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
}

// Service is a platform adapter bound to one user's credentials.
type Service interface {
	Source
	Searcher
	Writer
	Lister
	Platform() models.Platform
}

// capped stops a sequence after max items; max <= 0 means unlimited.
func capped(seq iter.Seq2[models.Track, error], max int) iter.Seq2[models.Track, error] {
	if max <= 0 {
		return seq
	}
	return func(yield func(models.Track, error) bool) {
		n := 0
		for t, err := range seq {
			if err == nil {
				if n == max {
					return
				}
				n++
			}
			if !yield(t, err) {
				return
			}
		}
	}
}
