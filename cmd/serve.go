package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/playlift/internal/server"
	"github.com/desertthunder/playlift/internal/shared"
	"github.com/desertthunder/playlift/internal/status"
)

// drainTimeout bounds how long serve waits for running transfers on shutdown.
const drainTimeout = 30 * time.Second

// Serve runs the HTTP API, the worker pool and the status janitor until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := r.buildStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	workers := r.config.Transfer.Workers
	if n := int(cmd.Int("workers")); n > 0 {
		workers = n
	}

	d := r.dispatcher(s, workers, nil)
	d.Start(ctx)

	janitorInterval := time.Duration(r.config.Status.JanitorInterval) * time.Second
	go status.RunJanitor(ctx, s.store, janitorInterval, shared.WithLogger(r.logger, "component", "janitor"))

	router := server.NewRouter(r.config.Server, server.Deps{
		Transfers: d,
		Sessions:  s.manager,
		Playlists: s.engine,
		Logger:    shared.WithLogger(r.logger, "component", "http"),
	})

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	r.logger.Info("serving transfers", "addr", addr, "workers", workers, "status_backend", r.config.Status.Backend)
	serveErr := server.Serve(ctx, addr, router, r.logger)

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := d.Shutdown(drainCtx); err != nil {
		r.logger.Warn("transfers still running at shutdown", "error", err)
	}
	return serveErr
}
