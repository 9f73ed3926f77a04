// Spotify Web API adapter built on [spotify.Client].
package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

const (
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1/"
)

// SpotifyScopes are requested at login; reads of private playlists and writes to both
// playlists and the library need all of them.
var SpotifyScopes = []string{
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-library-read",
	"user-library-modify",
}

// SpotifyService reads, searches and writes Spotify tracks for one user.
type SpotifyService struct {
	client    *spotify.Client
	maxTracks int
	logger    *log.Logger
}

// SpotifyOptions configures a [SpotifyService].
type SpotifyOptions struct {
	// BaseURL overrides the Web API root, mostly for tests.
	BaseURL   string
	MaxTracks int
	Logger    *log.Logger
}

// NewSpotifyService wraps an authorized HTTP client.
func NewSpotifyService(httpClient *http.Client, opts SpotifyOptions) *SpotifyService {
	base := opts.BaseURL
	if base == "" {
		base = spotifyBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifyService{
		client:    spotify.New(httpClient, spotify.WithBaseURL(base)),
		maxTracks: opts.MaxTracks,
		logger:    shared.WithLogger(logger, "platform", models.Spotify),
	}
}

func (s *SpotifyService) Platform() models.Platform { return models.Spotify }

// ListTracks pages through GET /playlists/{id}/tracks. Local files, episodes and removed
// tracks have no usable track object and are skipped.
func (s *SpotifyService) ListTracks(ctx context.Context, ref models.PlaylistRef) iter.Seq2[models.Track, error] {
	seq := func(yield func(models.Track, error) bool) {
		offset := 0
		for {
			page, err := s.client.GetPlaylistItems(ctx, spotify.ID(ref.ID), spotify.Limit(pageSize), spotify.Offset(offset))
			if err != nil {
				yield(models.Track{}, s.wrap(opRead, err))
				return
			}

			for _, item := range page.Items {
				ft := item.Track.Track
				if ft == nil || ft.Name == "" || len(ft.Artists) == 0 {
					continue
				}
				if !yield(models.Track{Artist: joinArtists(ft.Artists), Title: ft.Name}, nil) {
					return
				}
			}

			offset += len(page.Items)
			if page.Next == "" || len(page.Items) == 0 {
				return
			}
		}
	}
	return capped(seq, s.maxTracks)
}

// ListPlaylists pages through GET /me/playlists and keeps the playlists the current user owns.
// Followed playlists are left out since they cannot be written to.
func (s *SpotifyService) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	me, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, s.wrap(opList, err)
	}

	var out []models.Playlist
	offset := 0
	for {
		page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(pageSize), spotify.Offset(offset))
		if err != nil {
			return nil, s.wrap(opList, err)
		}

		for _, pl := range page.Playlists {
			if pl.Owner.ID != me.ID {
				continue
			}
			p := models.Playlist{
				Platform:    models.Spotify,
				ID:          string(pl.ID),
				Name:        pl.Name,
				TracksCount: int(pl.Tracks.Total),
				Owner:       pl.Owner.DisplayName,
				Public:      pl.IsPublic,
			}
			if len(pl.Images) > 0 {
				p.CoverImage = pl.Images[0].URL
			}
			out = append(out, p)
		}

		offset += len(page.Playlists)
		if len(page.Playlists) < pageSize || page.Next == "" {
			break
		}
	}
	s.logger.Debug("listed playlists", "count", len(out))
	return out, nil
}

// Search runs a field-filtered track query: artist:"A" track:"T".
func (s *SpotifyService) Search(ctx context.Context, t models.Track, limit int) ([]models.Candidate, error) {
	query := fmt.Sprintf("artist:%q track:%q", t.Artist, t.Title)
	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, s.wrap(opSearch, err)
	}
	if res.Tracks == nil {
		return nil, nil
	}

	out := make([]models.Candidate, 0, len(res.Tracks.Tracks))
	for _, ft := range res.Tracks.Tracks {
		c := models.Candidate{ID: string(ft.ID), Name: ft.Name, Artist: joinArtists(ft.Artists)}
		if len(ft.Album.Images) > 0 {
			c.ArtworkURL = ft.Album.Images[0].URL
		}
		out = append(out, c)
	}
	return out, nil
}

// Write adds the track to a playlist, or saves it to Liked Songs when target has no id.
func (s *SpotifyService) Write(ctx context.Context, c models.Candidate, target models.PlaylistRef) error {
	var err error
	if target.IsDefault() {
		err = s.client.AddTracksToLibrary(ctx, spotify.ID(c.ID))
	} else {
		_, err = s.client.AddTracksToPlaylist(ctx, spotify.ID(target.ID), spotify.ID(c.ID))
	}
	if err != nil {
		return s.wrap(opWrite, err)
	}
	s.logger.Debug("added track", "id", c.ID, "target", target.ID)
	return nil
}

func (s *SpotifyService) wrap(o op, err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		return classify(models.Spotify, o, se.Status, se.Message)
	}
	var sp *spotify.Error
	if errors.As(err, &sp) && sp != nil {
		return classify(models.Spotify, o, sp.Status, sp.Message)
	}
	return transportError(models.Spotify, err)
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
