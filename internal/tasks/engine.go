package tasks

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/playlift/internal/matching"
	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/services"
	"github.com/desertthunder/playlift/internal/status"
)

// Credentials hands out valid credentials and refreshing token sources for a session.
// auth.Manager is the production implementation.
type Credentials interface {
	Valid(ctx context.Context, sessionID string, p models.Platform) (*models.Credential, error)
	TokenSource(ctx context.Context, sessionID string, p models.Platform) oauth2.TokenSource
}

// ServiceFactory builds a platform service that authenticates with ts.
// services.Factory is the production implementation.
type ServiceFactory interface {
	New(ctx context.Context, p models.Platform, ts oauth2.TokenSource) (services.Service, error)
}

// EngineOptions tunes the per-job loop. Zero values fall back to the defaults below.
type EngineOptions struct {
	PaceEvery     int               // Pause before every PaceEvery-th track (default 10)
	PaceDelay     time.Duration     // Length of that pause (default 1s, negative disables)
	ProgressEvery int               // Publish progress every ProgressEvery tracks (default 2)
	Matcher       matching.Strategy // Candidate selection (default first result)
	Logger        *log.Logger
}

// Engine runs a single transfer and records its progress in a status store.
type Engine struct {
	creds         Credentials
	factory       ServiceFactory
	store         status.Store
	matcher       matching.Strategy
	paceEvery     int
	paceDelay     time.Duration
	progressEvery int
	logger        *log.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an Engine.
func NewEngine(creds Credentials, factory ServiceFactory, store status.Store, opts EngineOptions) *Engine {
	e := &Engine{
		creds:         creds,
		factory:       factory,
		store:         store,
		matcher:       opts.Matcher,
		paceEvery:     opts.PaceEvery,
		paceDelay:     opts.PaceDelay,
		progressEvery: opts.ProgressEvery,
		logger:        opts.Logger,
		now:           time.Now,
		sleep:         sleepContext,
	}
	if e.matcher == nil {
		e.matcher = matching.FirstResult{}
	}
	if e.paceEvery <= 0 {
		e.paceEvery = 10
	}
	switch {
	case opts.PaceDelay == 0:
		e.paceDelay = time.Second
	case opts.PaceDelay < 0:
		e.paceDelay = 0
	}
	if e.progressEvery <= 0 {
		e.progressEvery = 2
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Run executes job and returns its final snapshot, which is always SUCCESS or FAILURE.
//
// Failures before the track loop (credentials, source enumeration) fail the whole job.
// Failures inside the loop are recorded per track and the job still succeeds.
func (e *Engine) Run(ctx context.Context, job *models.TransferJob, progress chan<- ProgressUpdate) *models.TransferJob {
	job = job.Clone()
	req := job.Request
	logger := e.logger.With("job", job.ID, "direction", req.Direction)

	src, dst, err := e.setup(ctx, job.ID, req, progress)
	if err != nil {
		return e.fail(ctx, logger, job, err, progress)
	}

	sendProgress(progress, fetchSourceUpdate(job.ID, req.Source))
	tracks, err := collect(src.ListTracks(ctx, req.Source))
	if err != nil {
		return e.fail(ctx, logger, job, err, progress)
	}

	total := len(tracks)
	logger.Info("Starting transfer", "tracks", total)
	job.Advance(0, total, fmt.Sprintf("Starting transfer of %d songs...", total), e.now())
	e.publish(ctx, logger, job)

	result := models.NewResult()
	for i, track := range tracks {
		if i > 0 && i%e.paceEvery == 0 {
			if err := e.sleep(ctx, e.paceDelay); err != nil {
				logger.Warn("Pacing interrupted", "error", err)
			}
		}

		reason := e.transferTrack(ctx, dst, req.Destination, track, result)
		if reason != "" {
			logger.Debug("Track failed", "track", track, "reason", reason)
		}
		sendProgress(progress, trackUpdate(job.ID, i+1, total, track, reason))

		if i%e.progressEvery == 0 || i == total-1 {
			job.Advance(i+1, total, fmt.Sprintf("Processed %d/%d songs", i+1, total), e.now())
			e.publish(ctx, logger, job)
		}
	}

	job.Succeed(result, e.now())
	e.publish(ctx, logger, job)
	logger.Info("Transfer finished", "successful", result.Successful.Count, "failed", result.Failed.Count)
	sendProgress(progress, completeUpdate(job))
	return job
}

// setup acquires credentials for both platforms and builds the services for this job.
func (e *Engine) setup(ctx context.Context, id string, req models.TransferRequest, progress chan<- ProgressUpdate) (services.Service, services.Service, error) {
	platforms := []models.Platform{req.Direction.Source(), req.Direction.Destination()}
	built := make([]services.Service, len(platforms))

	for i, p := range platforms {
		sendProgress(progress, authorizeUpdate(id, i+1, len(platforms), p))

		if _, err := e.creds.Valid(ctx, req.SessionID, p); err != nil {
			return nil, nil, err
		}
		svc, err := e.factory.New(ctx, p, e.creds.TokenSource(ctx, req.SessionID, p))
		if err != nil {
			return nil, nil, err
		}
		built[i] = svc
	}
	return built[0], built[1], nil
}

// transferTrack matches and writes one track, recording the outcome in result.
// It returns the failure reason, or "" on success.
func (e *Engine) transferTrack(ctx context.Context, dst services.Service, target models.PlaylistRef, t models.Track, result *models.Result) string {
	candidate, err := e.matcher.Match(ctx, dst, t)
	if err != nil {
		result.AddFailure(t, err.Error())
		return err.Error()
	}

	if err := dst.Write(ctx, candidate, target); err != nil {
		reason := fmt.Sprintf("Failed to add to %s: %v", dst.Platform().Title(), err)
		result.AddFailure(t, reason)
		return reason
	}

	result.AddSuccess(candidate)
	return ""
}

func (e *Engine) fail(ctx context.Context, logger *log.Logger, job *models.TransferJob, err error, progress chan<- ProgressUpdate) *models.TransferJob {
	job.Fail(err, e.now())
	logger.Error("Transfer failed", "kind", job.ErrorKind, "error", err)
	e.publish(ctx, logger, job)
	sendProgress(progress, failedUpdate(job))
	return job
}

// publish stores a snapshot. Store errors are logged and never fail the transfer.
func (e *Engine) publish(ctx context.Context, logger *log.Logger, job *models.TransferJob) {
	if err := e.store.Save(ctx, job); err != nil {
		logger.Warn("Failed to save job status", "state", job.State, "current", job.Current, "error", err)
	}
}

// collect drains a track sequence, stopping at the first error.
func collect(seq iter.Seq2[models.Track, error]) ([]models.Track, error) {
	var tracks []models.Track
	for t, err := range seq {
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
