package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
	"github.com/desertthunder/playlift/internal/status"
)

// Runner executes one job to completion. [Engine] is the production implementation.
type Runner interface {
	Run(ctx context.Context, job *models.TransferJob, progress chan<- ProgressUpdate) *models.TransferJob
}

// DispatcherOptions sizes the worker pool.
type DispatcherOptions struct {
	Workers   int                   // Concurrent jobs (default 4)
	QueueSize int                   // Jobs waiting for a worker (default 64)
	Updates   chan<- ProgressUpdate // Optional progress stream for every job
	Logger    *log.Logger
}

// Dispatcher accepts transfer requests and runs them on a bounded worker pool.
//
// Submit never waits for a worker: a full queue is reported immediately. Jobs cannot be
// cancelled once accepted and run on a context detached from the submitter's.
type Dispatcher struct {
	runner  Runner
	store   status.Store
	queue   chan *models.TransferJob
	workers int
	updates chan<- ProgressUpdate
	logger  *log.Logger

	mu       sync.RWMutex
	closed   bool
	stopping atomic.Bool
	started  sync.Once
	running  atomic.Bool
	wg       sync.WaitGroup

	newID func() string
	now   func() time.Time
}

// NewDispatcher creates a Dispatcher. Call [Dispatcher.Start] before submitting.
func NewDispatcher(runner Runner, store status.Store, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Dispatcher{
		runner:  runner,
		store:   store,
		queue:   make(chan *models.TransferJob, opts.QueueSize),
		workers: opts.Workers,
		updates: opts.Updates,
		logger:  opts.Logger,
		newID:   shared.GenerateID,
		now:     time.Now,
	}
}

// Start launches the workers. Jobs run on ctx with its cancellation removed.
func (d *Dispatcher) Start(ctx context.Context) {
	d.started.Do(func() {
		d.running.Store(true)
		runCtx := context.WithoutCancel(ctx)
		for i := range d.workers {
			d.wg.Add(1)
			go d.worker(runCtx, i)
		}
		d.logger.Info("Dispatcher started", "workers", d.workers, "queue", cap(d.queue))
	})
}

// Submit validates req, stores it as PENDING and queues it. It returns the new job id.
//
// Invalid requests create no job. When the queue is full the job is stored as FAILURE and
// [shared.ErrQueueFull] is returned alongside its id.
func (d *Dispatcher) Submit(ctx context.Context, req models.TransferRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return "", fmt.Errorf("%w: dispatcher is shutting down", shared.ErrServiceUnavailable)
	}

	job := models.NewJob(d.newID(), req, d.now())
	if err := d.store.Save(ctx, job); err != nil {
		return "", fmt.Errorf("failed to store job: %w", err)
	}

	select {
	case d.queue <- job:
		d.logger.Debug("Job queued", "job", job.ID, "direction", req.Direction)
		return job.ID, nil
	default:
		job.Fail(shared.ErrQueueFull, d.now())
		if err := d.store.Save(ctx, job); err != nil {
			d.logger.Warn("Failed to save rejected job", "job", job.ID, "error", err)
		}
		return job.ID, shared.ErrQueueFull
	}
}

// Status returns the latest snapshot of a job.
func (d *Dispatcher) Status(ctx context.Context, id string) (*models.TransferJob, error) {
	return d.store.Load(ctx, id)
}

// Shutdown stops accepting jobs, fails the ones still queued and waits for running jobs
// until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.stopping.Store(true)
		close(d.queue)
	}
	d.mu.Unlock()

	if !d.running.Load() {
		for job := range d.queue {
			d.abandon(ctx, job)
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: workers still running", shared.ErrTimeout)
	}
}

func (d *Dispatcher) worker(ctx context.Context, n int) {
	defer d.wg.Done()

	for job := range d.queue {
		if d.stopping.Load() {
			d.abandon(ctx, job)
			continue
		}
		d.run(ctx, n, job)
	}
}

// run executes one job, turning a panic into a FAILURE instead of losing the worker.
func (d *Dispatcher) run(ctx context.Context, n int, job *models.TransferJob) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Job panicked", "job", job.ID, "worker", n, "panic", r)
			failed := job.Clone()
			if latest, err := d.store.Load(ctx, job.ID); err == nil && !latest.State.Terminal() {
				failed = latest
			}
			failed.Fail(fmt.Errorf("transfer crashed: %v", r), d.now())
			if err := d.store.Save(ctx, failed); err != nil {
				d.logger.Warn("Failed to save crashed job", "job", job.ID, "error", err)
			}
		}
	}()

	d.logger.Debug("Job started", "job", job.ID, "worker", n)
	final := d.runner.Run(ctx, job, d.updates)
	d.logger.Debug("Job finished", "job", job.ID, "worker", n, "state", final.State)
}

func (d *Dispatcher) abandon(ctx context.Context, job *models.TransferJob) {
	job.Fail(fmt.Errorf("%w: service shutting down", shared.ErrServiceUnavailable), d.now())
	if err := d.store.Save(ctx, job); err != nil {
		d.logger.Warn("Failed to save abandoned job", "job", job.ID, "error", err)
	}
}
