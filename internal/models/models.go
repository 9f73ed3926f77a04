package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/playlift/internal/shared"
)

// Platform identifies a streaming service.
type Platform string

const (
	Spotify Platform = "spotify"
	YouTube Platform = "youtube"
)

// ParsePlatform accepts a platform name in any case.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case Spotify, YouTube:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidArgument, s)
	}
}

// Title returns the display name, e.g. "Spotify".
func (p Platform) Title() string {
	switch p {
	case Spotify:
		return "Spotify"
	case YouTube:
		return "YouTube"
	default:
		return string(p)
	}
}

// Direction is the ordered (source, destination) platform pair of a transfer.
type Direction string

const (
	SpotifyToYouTube Direction = "spotify-to-youtube"
	YouTubeToSpotify Direction = "youtube-to-spotify"
)

// Source returns the platform tracks are read from.
func (d Direction) Source() Platform {
	if d == SpotifyToYouTube {
		return Spotify
	}
	return YouTube
}

// Destination returns the platform tracks are written to.
func (d Direction) Destination() Platform {
	if d == SpotifyToYouTube {
		return YouTube
	}
	return Spotify
}

// Valid reports whether d is a supported direction.
func (d Direction) Valid() bool {
	return d == SpotifyToYouTube || d == YouTubeToSpotify
}

// Track is a song identified by artist and title. Both are non-empty once a source adapter yields it.
type Track struct {
	Artist string `json:"artist"`
	Title  string `json:"track"`
}

func (t Track) String() string {
	return t.Artist + " - " + t.Title
}

// PlaylistRef points at a playlist on a platform.
type PlaylistRef struct {
	Platform Platform `json:"platform"`
	ID       string   `json:"id,omitempty"`
	Owner    string   `json:"owner,omitempty"`
	Public   bool     `json:"public,omitempty"`
}

// IsDefault reports whether the ref names the platform's default collection
// (Spotify Liked Songs, YouTube liked videos).
func (r PlaylistRef) IsDefault() bool {
	return r.ID == ""
}

// Playlist is an entry in a user's own playlist listing, used to pick a transfer source
// or destination.
type Playlist struct {
	Platform    Platform `json:"platform"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TracksCount int      `json:"tracks_count"`
	Owner       string   `json:"owner,omitempty"`
	Public      bool     `json:"public"`
	CoverImage  string   `json:"cover_image,omitempty"`
}

// Ref returns a reference usable as a transfer source or destination.
func (p Playlist) Ref() PlaylistRef {
	return PlaylistRef{Platform: p.Platform, ID: p.ID, Owner: p.Owner, Public: p.Public}
}

// Candidate is a destination-platform search hit.
type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"track"`
	Artist     string `json:"artist"`
	ArtworkURL string `json:"artwork_url,omitempty"`
}
