// YouTube Data API v3 adapter built on [youtube.Service].
package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// musicCategory is the YouTube video category id for Music.
const musicCategory = "10"

// YouTubeScopes are requested at login.
var YouTubeScopes = []string{youtube.YoutubeScope}

// YouTubeService reads, searches and writes YouTube videos for one user.
type YouTubeService struct {
	svc       *youtube.Service
	maxTracks int
	logger    *log.Logger
}

// YouTubeOptions configures a [YouTubeService].
type YouTubeOptions struct {
	// Endpoint overrides the API root (e.g. "https://youtube.googleapis.com/"), mostly for tests.
	Endpoint  string
	MaxTracks int
	Logger    *log.Logger
}

// NewYouTubeService wraps an authorized HTTP client.
func NewYouTubeService(ctx context.Context, httpClient *http.Client, opts YouTubeOptions) (*YouTubeService, error) {
	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
	}

	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: youtube client: %v", shared.ErrServiceUnavailable, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &YouTubeService{
		svc:       svc,
		maxTracks: opts.MaxTracks,
		logger:    shared.WithLogger(logger, "platform", models.YouTube),
	}, nil
}

func (y *YouTubeService) Platform() models.Platform { return models.YouTube }

// ListTracks pages through playlistItems.list and parses each video title with
// [ParseVideoTitle]. Videos whose titles do not parse are dropped.
func (y *YouTubeService) ListTracks(ctx context.Context, ref models.PlaylistRef) iter.Seq2[models.Track, error] {
	seq := func(yield func(models.Track, error) bool) {
		pageToken := ""
		for {
			call := y.svc.PlaylistItems.List([]string{"snippet"}).
				PlaylistId(ref.ID).
				MaxResults(pageSize).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			resp, err := call.Do()
			if err != nil {
				yield(models.Track{}, y.wrap(opRead, err))
				return
			}

			for _, item := range resp.Items {
				if item.Snippet == nil {
					continue
				}
				t, ok := ParseVideoTitle(item.Snippet.Title)
				if !ok {
					y.logger.Debug("skipping unparsable title", "title", item.Snippet.Title)
					continue
				}
				if !yield(t, nil) {
					return
				}
			}

			if resp.NextPageToken == "" {
				return
			}
			pageToken = resp.NextPageToken
		}
	}
	return capped(seq, y.maxTracks)
}

// ListPlaylists pages through playlists.list for the authorized channel (mine=true).
func (y *YouTubeService) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var out []models.Playlist
	pageToken := ""
	for {
		call := y.svc.Playlists.List([]string{"snippet", "contentDetails", "status"}).
			Mine(true).
			MaxResults(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, y.wrap(opList, err)
		}

		for _, item := range resp.Items {
			p := models.Playlist{Platform: models.YouTube, ID: item.Id}
			if sn := item.Snippet; sn != nil {
				p.Name = sn.Title
				p.Owner = sn.ChannelTitle
				p.CoverImage = thumbnailURL(sn.Thumbnails)
			}
			if item.ContentDetails != nil {
				p.TracksCount = int(item.ContentDetails.ItemCount)
			}
			if item.Status != nil {
				p.Public = item.Status.PrivacyStatus == "public"
			}
			out = append(out, p)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	y.logger.Debug("listed playlists", "count", len(out))
	return out, nil
}

// Search looks up music videos for "artist title".
func (y *YouTubeService) Search(ctx context.Context, t models.Track, limit int) ([]models.Candidate, error) {
	resp, err := y.svc.Search.List([]string{"snippet"}).
		Q(t.Artist + " " + t.Title).
		Type("video").
		VideoCategoryId(musicCategory).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, y.wrap(opSearch, err)
	}

	out := make([]models.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		out = append(out, videoCandidate(item.Id.VideoId, item.Snippet))
	}
	return out, nil
}

// Write inserts the video into a playlist, or likes it when target has no id.
func (y *YouTubeService) Write(ctx context.Context, c models.Candidate, target models.PlaylistRef) error {
	var err error
	if target.IsDefault() {
		err = y.svc.Videos.Rate(c.ID, "like").Context(ctx).Do()
	} else {
		item := &youtube.PlaylistItem{
			Snippet: &youtube.PlaylistItemSnippet{
				PlaylistId: target.ID,
				ResourceId: &youtube.ResourceId{Kind: "youtube#video", VideoId: c.ID},
			},
		}
		_, err = y.svc.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	}
	if err != nil {
		return y.wrap(opWrite, err)
	}
	y.logger.Debug("added video", "id", c.ID, "target", target.ID)
	return nil
}

func (y *YouTubeService) wrap(o op, err error) error {
	var ge *googleapi.Error
	if !errors.As(err, &ge) {
		return transportError(models.YouTube, err)
	}

	msg := ge.Message
	if msg == "" {
		msg = ge.Body
	}
	// quota exhaustion is reported as 403 but says nothing about the playlist
	if ge.Code == http.StatusForbidden && quotaExceeded(ge) {
		return &shared.UpstreamError{Platform: string(models.YouTube), Status: ge.Code, Body: msg}
	}
	return classify(models.YouTube, o, ge.Code, msg)
}

func quotaExceeded(ge *googleapi.Error) bool {
	for _, item := range ge.Errors {
		if item.Reason == "quotaExceeded" || item.Reason == "rateLimitExceeded" {
			return true
		}
	}
	return false
}

// videoCandidate prefers the parsed "Artist - Title" form and falls back to the channel name.
func videoCandidate(id string, s *youtube.SearchResultSnippet) models.Candidate {
	c := models.Candidate{ID: id, Name: s.Title, Artist: strings.TrimSuffix(s.ChannelTitle, " - Topic")}
	if t, ok := ParseVideoTitle(s.Title); ok {
		c.Name, c.Artist = t.Title, t.Artist
	}
	c.ArtworkURL = thumbnailURL(s.Thumbnails)
	return c
}

// thumbnailURL picks the largest available thumbnail.
func thumbnailURL(th *youtube.ThumbnailDetails) string {
	if th == nil {
		return ""
	}
	for _, img := range []*youtube.Thumbnail{th.High, th.Medium, th.Default} {
		if img != nil && img.Url != "" {
			return img.Url
		}
	}
	return ""
}
