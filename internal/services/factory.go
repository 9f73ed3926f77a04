package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// FactoryOptions configures a [Factory].
type FactoryOptions struct {
	HTTPClient       *http.Client
	SpotifyURL       string
	YouTubeURL       string
	SpotifyMaxTracks int
	YouTubeMaxTracks int
	SpotifyRPS       float64
	YouTubeRPS       float64
	Logger           *log.Logger
}

// Factory builds per-job platform services. Request rate limits are shared by every service
// a Factory creates, so concurrent jobs together stay under a platform's budget.
type Factory struct {
	opts     FactoryOptions
	limiters map[models.Platform]*rate.Limiter
}

// NewFactory creates a Factory, defaulting to [shared.NewHTTPClient] and no rate limit.
func NewFactory(opts FactoryOptions) *Factory {
	if opts.HTTPClient == nil {
		opts.HTTPClient = shared.NewHTTPClient(0)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Factory{
		opts: opts,
		limiters: map[models.Platform]*rate.Limiter{
			models.Spotify: newLimiter(opts.SpotifyRPS),
			models.YouTube: newLimiter(opts.YouTubeRPS),
		},
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// New returns a service for p whose requests authenticate with ts.
func (f *Factory) New(ctx context.Context, p models.Platform, ts oauth2.TokenSource) (Service, error) {
	client := authorizedClient(f.opts.HTTPClient, ts, f.limiters[p])

	switch p {
	case models.Spotify:
		return NewSpotifyService(client, SpotifyOptions{
			BaseURL:   f.opts.SpotifyURL,
			MaxTracks: f.opts.SpotifyMaxTracks,
			Logger:    f.opts.Logger,
		}), nil
	case models.YouTube:
		return NewYouTubeService(ctx, client, YouTubeOptions{
			Endpoint:  f.opts.YouTubeURL,
			MaxTracks: f.opts.YouTubeMaxTracks,
			Logger:    f.opts.Logger,
		})
	default:
		return nil, fmt.Errorf("%w: platform %q", shared.ErrInvalidArgument, p)
	}
}
