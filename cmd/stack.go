package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/playlift/internal/auth"
	"github.com/desertthunder/playlift/internal/matching"
	"github.com/desertthunder/playlift/internal/repositories"
	"github.com/desertthunder/playlift/internal/services"
	"github.com/desertthunder/playlift/internal/shared"
	"github.com/desertthunder/playlift/internal/status"
	"github.com/desertthunder/playlift/internal/tasks"
)

// stack is the set of long-lived components behind serve and transfer run.
type stack struct {
	db         *sql.DB
	creds      *repositories.CredentialRepository
	manager    *auth.Manager
	store      status.Store
	closeStore func() error
	engine     *tasks.Engine
}

// openDatabase opens the configured SQLite database and brings its schema up to date.
func (r *Runner) openDatabase() (*sql.DB, error) {
	cfg := r.config.Database
	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// credentialManager wires the SQLite credential repository to refreshers for both platforms.
func (r *Runner) credentialManager(db *sql.DB) (*repositories.CredentialRepository, *auth.Manager) {
	repo := repositories.NewCredentialRepository(db)
	client := shared.NewHTTPClient(r.config.Transfer.Timeout())
	refreshers := auth.Refreshers(auth.OAuthConfigs(r.config.Credentials), client)
	return repo, auth.NewManager(repo, refreshers, shared.WithLogger(r.logger, "component", "auth"))
}

// serviceFactory builds platform services with the configured timeouts, caps and rate limits.
func (r *Runner) serviceFactory() *services.Factory {
	cfg := r.config.Transfer
	return services.NewFactory(services.FactoryOptions{
		HTTPClient:       shared.NewHTTPClient(cfg.Timeout()),
		SpotifyURL:       r.spotifyURL,
		YouTubeURL:       r.youtubeURL,
		SpotifyMaxTracks: cfg.SpotifyMaxTracks,
		YouTubeMaxTracks: cfg.YouTubeMaxTracks,
		SpotifyRPS:       cfg.SpotifyRPS,
		YouTubeRPS:       cfg.YouTubeRPS,
		Logger:           shared.WithLogger(r.logger, "component", "services"),
	})
}

// buildStack opens storage and assembles the transfer engine from the configuration.
func (r *Runner) buildStack(ctx context.Context) (*stack, error) {
	cfg := r.config

	matcher, err := matching.New(cfg.Transfer.Matcher)
	if err != nil {
		return nil, err
	}

	db, err := r.openDatabase()
	if err != nil {
		return nil, err
	}

	store, closeStore, err := status.Open(ctx, cfg.Status, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	repo, manager := r.credentialManager(db)
	factory := r.serviceFactory()

	paceDelay := cfg.Transfer.PaceDelay()
	if paceDelay <= 0 {
		paceDelay = -1
	}

	engine := tasks.NewEngine(manager, factory, store, tasks.EngineOptions{
		PaceEvery:     cfg.Transfer.PaceEvery,
		PaceDelay:     paceDelay,
		ProgressEvery: cfg.Transfer.ProgressEvery,
		Matcher:       matcher,
		Logger:        shared.WithLogger(r.logger, "component", "engine"),
	})

	r.logger.Debug("stack ready", "status_backend", cfg.Status.Backend, "matcher", cfg.Transfer.Matcher)
	return &stack{
		db:         db,
		creds:      repo,
		manager:    manager,
		store:      store,
		closeStore: closeStore,
		engine:     engine,
	}, nil
}

// dispatcher builds a worker pool over the stack's engine and store.
func (r *Runner) dispatcher(s *stack, workers int, updates chan<- tasks.ProgressUpdate) *tasks.Dispatcher {
	return tasks.NewDispatcher(s.engine, s.store, tasks.DispatcherOptions{
		Workers:   workers,
		QueueSize: r.config.Transfer.QueueSize,
		Updates:   updates,
		Logger:    shared.WithLogger(r.logger, "component", "dispatcher"),
	})
}

func (s *stack) Close() error {
	return errors.Join(s.closeStore(), s.db.Close())
}
