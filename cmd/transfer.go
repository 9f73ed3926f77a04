package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/playlift/internal/formatter"
	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/repositories"
	"github.com/desertthunder/playlift/internal/services"
	"github.com/desertthunder/playlift/internal/shared"
	"github.com/desertthunder/playlift/internal/tasks"
)

// localPollInterval is how often transfer run reads the job it is waiting on.
const localPollInterval = 250 * time.Millisecond

// localShutdownTimeout bounds how long transfer run waits for its worker on exit.
const localShutdownTimeout = 10 * time.Second

func payloadFrom(cmd *cli.Command) services.TransferPayload {
	return services.TransferPayload{
		SessionID:   cmd.String("session"),
		Direction:   cmd.String("direction"),
		Source:      cmd.String("source"),
		Destination: cmd.String("dest"),
	}
}

// TransferRun runs one transfer on an in-process worker and prints its progress until it finishes.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	req, err := payloadFrom(cmd).Request()
	if err != nil {
		return err
	}

	s, err := r.buildStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	updates := make(chan tasks.ProgressUpdate, 64)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range updates {
			r.printUpdate(update)
		}
	}()

	d := r.dispatcher(s, 1, updates)
	d.Start(ctx)
	defer r.stopLocal(ctx, d, localShutdownTimeout, updates, printed)

	r.logger.Info("starting transfer", "direction", req.Direction, "source", req.Source.ID)
	r.writePlain("Starting %s transfer...\n\n", req.Direction)

	id, err := d.Submit(ctx, req)
	if err != nil {
		return err
	}

	view, err := waitTerminal(ctx, localPollInterval, func(ctx context.Context) (models.StatusView, error) {
		job, err := d.Status(ctx, id)
		if err != nil {
			return models.StatusView{}, err
		}
		return job.View(), nil
	})
	if err != nil {
		return err
	}
	return r.report(cmd, view)
}

// stopLocal shuts the in-process worker down and then closes its progress stream. A worker
// still running after timeout may send again, so the stream stays open in that case.
func (r *Runner) stopLocal(ctx context.Context, d *tasks.Dispatcher, timeout time.Duration, updates chan<- tasks.ProgressUpdate, printed <-chan struct{}) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := d.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("worker still running at exit", "error", err)
		return err
	}
	close(updates)
	<-printed
	return nil
}

// TransferSubmit sends a transfer to a running server, optionally waiting for the result.
func (r *Runner) TransferSubmit(ctx context.Context, cmd *cli.Command) error {
	payload := payloadFrom(cmd)
	if _, err := payload.Request(); err != nil {
		return err
	}

	api := r.apiClient(cmd)
	id, err := api.Submit(ctx, payload)
	if err != nil {
		return err
	}
	r.logger.Info("transfer submitted", "job", id)

	if !cmd.Bool("wait") {
		if cmd.Bool("json") {
			return r.writeJSON(map[string]string{"job_id": id}, cmd.Bool("pretty"))
		}
		r.writePlain("✓ Submitted job %s\n", id)
		return r.writePlain("Check it with: playlift transfer status %s\n", id)
	}

	r.writePlain("→ Waiting for job %s...\n", id)
	var lastStatus string
	view, err := waitTerminal(ctx, cmd.Duration("interval"), func(ctx context.Context) (models.StatusView, error) {
		view, err := api.Status(ctx, id)
		if err != nil {
			return models.StatusView{}, err
		}
		if view.Status != "" && view.Status != lastStatus && !view.State.Terminal() {
			lastStatus = view.Status
			r.writePlain("   %s\n", view.Status)
		}
		return *view, nil
	})
	if err != nil {
		return err
	}
	return r.report(cmd, view)
}

// TransferStatus prints the current view of a submitted job.
func (r *Runner) TransferStatus(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("job")
	if id == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}

	view, err := r.apiClient(cmd).Status(ctx, id)
	if err != nil {
		return err
	}
	return r.report(cmd, *view)
}

// TransferHistory lists recent jobs kept by the sqlite status backend.
func (r *Runner) TransferHistory(ctx context.Context, cmd *cli.Command) error {
	if r.config.Status.Backend != "sqlite" {
		return fmt.Errorf("%w: history needs status.backend = \"sqlite\", got %q", shared.ErrInvalidConfig, r.config.Status.Backend)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	jobs, err := repositories.NewJobRepository(db, r.config.Status.Retention()).List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]models.StatusView, 0, len(jobs))
		for _, j := range jobs {
			views = append(views, j.View())
		}
		return r.writeJSON(views, true)
	}

	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.ID,
			formatter.StateLabel(j.State),
			string(j.Request.Direction),
			fmt.Sprintf("%d/%d", j.Current, j.Total),
			j.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	headers := []string{"Job", "State", "Direction", "Tracks", "Updated"}
	return r.writePlain("%s\n", formatter.RenderTable(headers, rows, []formatter.Align{formatter.AlignLeft, formatter.AlignLeft, formatter.AlignLeft, formatter.AlignRight}))
}

// waitTerminal polls fetch every interval until the job is SUCCESS or FAILURE.
func waitTerminal(ctx context.Context, interval time.Duration, fetch func(context.Context) (models.StatusView, error)) (models.StatusView, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		view, err := fetch(ctx)
		if err != nil {
			return view, err
		}
		if view.State.Terminal() {
			return view, nil
		}

		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case <-ticker.C:
		}
	}
}

// report prints a job view and saves it when --save is set. A failed job is returned as an error.
func (r *Runner) report(cmd *cli.Command, view models.StatusView) error {
	if path := cmd.String("save"); path != "" {
		saved, err := formatter.WriteExport(view, path, "")
		if err != nil {
			return err
		}
		r.logger.Info("report saved", "path", saved)
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(view, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s\n", formatter.Summary(view))
		if table := formatter.ResultTable(view); table != "" {
			r.writePlain("\n%s\n", table)
		}
	}

	if view.State == models.StateFailure {
		return fmt.Errorf("transfer %s failed: %s: %s", view.JobID, view.ErrorKind, view.Error)
	}
	return nil
}

// printUpdate renders one progress event from the in-process worker.
func (r *Runner) printUpdate(u tasks.ProgressUpdate) {
	switch u.Phase {
	case tasks.Authorize:
		r.writePlain("🔑 %s\n", u.Message)
	case tasks.FetchSource:
		r.writePlain("📥 %s\n", u.Message)
	case tasks.TransferTracks:
		r.writePlain("   %s\n", u.Message)
	case tasks.Complete:
		r.writePlain("\n✅ %s\n", u.Message)
	case tasks.Failed:
		r.writePlain("\n❌ %s\n", u.Message)
	}
}
