// Package status stores transfer job snapshots so any process can answer "how is job X doing".
//
// Three backends satisfy [Store]: [MemoryStore] for a single process, [RedisStore] for
// workers and API servers in separate processes, and repositories.JobRepository for a
// durable local history. Every backend rejects snapshots that would move a job backwards
// (see models.CheckTransition) and reports unknown ids as PENDING.
package status

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/repositories"
	"github.com/desertthunder/playlift/internal/shared"
)

// Store persists job snapshots.
type Store interface {
	// Save replaces the stored snapshot of job.ID. It fails with [shared.ErrTerminalState]
	// or [shared.ErrStaleProgress] when job would undo an earlier snapshot.
	Save(ctx context.Context, job *models.TransferJob) error
	// Load returns the latest snapshot, or models.PendingJob for an id it does not know.
	Load(ctx context.Context, id string) (*models.TransferJob, error)
}

// Sweeper is a [Store] that deletes expired jobs on demand.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Open builds the store named by cfg.Backend. db is only used by the sqlite backend.
// The returned close function releases backend connections.
func Open(ctx context.Context, cfg shared.StatusConfig, db *sql.DB) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.Retention()), noop, nil
	case "redis":
		s, err := OpenRedis(ctx, cfg.RedisURL, cfg.Retention())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "sqlite":
		if db == nil {
			return nil, nil, fmt.Errorf("%w: sqlite status backend needs a database", shared.ErrInvalidConfig)
		}
		return repositories.NewJobRepository(db, cfg.Retention()), noop, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown status backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}

// RunJanitor sweeps s every interval until ctx is done. Stores that are not a [Sweeper]
// expire jobs on their own and are left alone.
func RunJanitor(ctx context.Context, s Store, interval time.Duration, logger *log.Logger) {
	sweeper, ok := s.(Sweeper)
	if !ok || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweeper.Sweep(ctx)
			if err != nil {
				logger.Warn("Job sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("Swept expired jobs", "count", n)
			}
		}
	}
}
