package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/repositories"
	"github.com/desertthunder/playlift/internal/server"
	"github.com/desertthunder/playlift/internal/shared"
	"github.com/desertthunder/playlift/internal/status"
	"github.com/desertthunder/playlift/internal/tasks"
	tu "github.com/desertthunder/playlift/internal/testing"
)

// testConfig writes a config whose database lives in a temp dir and returns its path.
func testConfig(t *testing.T, extra string) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "playlift.db")
	configPath = filepath.Join(dir, "config.toml")

	content := fmt.Sprintf(`[database]
path = %q

[credentials.spotify]
client_id = ""
client_secret = ""

[status]
backend = "sqlite"
%s`, dbPath, extra)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath, dbPath
}

func newTestRunner(output io.Writer) *Runner {
	return NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})
}

// runCLI runs args through the full command tree the way main does.
func runCLI(t *testing.T, r *Runner, configPath string, args ...string) error {
	t.Helper()
	t.Setenv("PLAYLIFT_SESSION", "")
	app := &cli.Command{
		Name:     "playlift",
		Flags:    []cli.Flag{&cli.StringFlag{Name: "config", Value: configPath}},
		Before:   r.Before,
		Commands: r.register(),
		Writer:   io.Discard,
	}
	return app.Run(context.Background(), append([]string{"playlift"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil values uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("reads the file", func(t *testing.T) {
			path, dbPath := testConfig(t, "")
			runner := newTestRunner(io.Discard)
			runner.configPath = path

			if err := runner.loadConfig(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config.Database.Path != dbPath {
				t.Errorf("expected database path %s, got %s", dbPath, runner.config.Database.Path)
			}
			if runner.config.Transfer.Workers != 4 {
				t.Errorf("missing keys should keep defaults, got workers=%d", runner.config.Transfer.Workers)
			}
		})

		t.Run("missing file uses defaults", func(t *testing.T) {
			runner := newTestRunner(io.Discard)
			runner.configPath = filepath.Join(t.TempDir(), "nope.toml")

			if err := runner.loadConfig(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config.Status.Backend != "memory" {
				t.Errorf("expected default backend, got %s", runner.config.Status.Backend)
			}
		})

		t.Run("invalid file", func(t *testing.T) {
			path, _ := testConfig(t, "[transfer]\nmatcher = \"random\"\n")
			runner := newTestRunner(io.Discard)
			runner.configPath = path

			if err := runner.loadConfig(); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("environment overrides", func(t *testing.T) {
			t.Setenv("PLAYLIFT_WORKERS", "7")
			runner := newTestRunner(io.Discard)

			if err := runner.loadConfig(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config.Transfer.Workers != 7 {
				t.Errorf("expected workers 7, got %d", runner.config.Transfer.Workers)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := newTestRunner(output)

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := newTestRunner(output)

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := newTestRunner(&bytes.Buffer{})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := newTestRunner(&tu.FWriter{})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := newTestRunner(&limitedWriter)

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := newTestRunner(output)

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := newTestRunner(&tu.FWriter{})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := newTestRunner(io.Discard).register()

		names := make([]string, 0, len(commands))
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}
		if got := strings.Join(names, ","); got != "setup,auth,playlists,transfer,serve" {
			t.Errorf("unexpected commands %s", got)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("database", func(t *testing.T) {
		configPath, dbPath := testConfig(t, "")
		output := &bytes.Buffer{}

		if err := runCLI(t, newTestRunner(output), configPath, "setup", "database"); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new.toml")
		runner := newTestRunner(io.Discard)

		if err := runCLI(t, runner, "", "setup", "config", "--path", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "[transfer]") {
			t.Errorf("template missing [transfer] section")
		}

		if err := runCLI(t, runner, "", "setup", "config", "--path", path); err == nil {
			t.Error("expected an error when the file already exists")
		}
	})
}

func TestAuthCommands(t *testing.T) {
	configPath, dbPath := testConfig(t, "")

	seed := func(t *testing.T) {
		t.Helper()
		db, err := shared.NewDatabase(dbPath)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
		repo := repositories.NewCredentialRepository(db)
		err = repo.Save(context.Background(), &models.Credential{
			SessionID:    "s1",
			Platform:     models.Spotify,
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresAt:    time.Now().Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("failed to seed credential: %v", err)
		}
	}

	t.Run("status requires a session", func(t *testing.T) {
		err := runCLI(t, newTestRunner(io.Discard), configPath, "auth", "status")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("status lists credentials", func(t *testing.T) {
		seed(t)
		output := &bytes.Buffer{}

		if err := runCLI(t, newTestRunner(output), configPath, "auth", "status", "--session", "s1"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Spotify") || strings.Contains(output.String(), "YouTube") {
			t.Errorf("expected only Spotify, got:\n%s", output.String())
		}
	})

	t.Run("status json", func(t *testing.T) {
		output := &bytes.Buffer{}

		if err := runCLI(t, newTestRunner(output), configPath, "auth", "status", "--session", "s1", "--json"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}
		if !strings.Contains(output.String(), `"platform": "spotify"`) || !strings.Contains(output.String(), `"refreshable": true`) {
			t.Errorf("unexpected JSON:\n%s", output.String())
		}
	})

	t.Run("logout", func(t *testing.T) {
		if err := runCLI(t, newTestRunner(io.Discard), configPath, "auth", "logout", "--session", "s1"); err != nil {
			t.Fatalf("auth logout failed: %v", err)
		}

		output := &bytes.Buffer{}
		if err := runCLI(t, newTestRunner(output), configPath, "auth", "status", "--session", "s1"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}
		if !strings.Contains(output.String(), "no stored credentials") {
			t.Errorf("expected no credentials after logout, got:\n%s", output.String())
		}
	})

	t.Run("login validates input", func(t *testing.T) {
		err := runCLI(t, newTestRunner(io.Discard), configPath, "auth", "login", "deezer")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}

		err = runCLI(t, newTestRunner(io.Discard), configPath, "auth", "login", "spotify")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

// stubTransfers serves a scripted sequence of job snapshots.
type stubTransfers struct {
	mu        sync.Mutex
	jobs      []*models.TransferJob
	calls     int
	submitted []models.TransferRequest
}

func (s *stubTransfers) Submit(ctx context.Context, req models.TransferRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, req)
	return "job-1", nil
}

func (s *stubTransfers) Status(ctx context.Context, id string) (*models.TransferJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[min(s.calls, len(s.jobs)-1)]
	s.calls++
	return job, nil
}

func scriptedJobs() []*models.TransferJob {
	now := time.Now()
	progress := models.NewJob("job-1", models.TransferRequest{}, now)
	progress.Advance(1, 2, "Processed 1/2 songs", now)

	done := progress.Clone()
	result := models.NewResult()
	result.AddSuccess(models.Candidate{ID: "v1", Name: "Yellow", Artist: "Coldplay"})
	result.AddFailure(models.Track{Artist: "NoSuchArtist", Title: "Nothing"}, "No results found for 'NoSuchArtist - Nothing'")
	done.Succeed(result, now)

	return []*models.TransferJob{progress, done}
}

func newAPIServer(t *testing.T, transfers server.Transfers) string {
	t.Helper()
	router := server.NewRouter(shared.ServerConfig{}, server.Deps{Transfers: transfers, Logger: shared.NewLogger(io.Discard)})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestTransferCommands(t *testing.T) {
	configPath, _ := testConfig(t, "")
	request := []string{"--session", "s1", "--direction", "youtube-to-spotify", "--source", "PL123"}

	t.Run("submit", func(t *testing.T) {
		stub := &stubTransfers{jobs: scriptedJobs()}
		url := newAPIServer(t, stub)
		output := &bytes.Buffer{}

		args := append([]string{"transfer", "submit", "--server", url}, request...)
		if err := runCLI(t, newTestRunner(output), configPath, args...); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if !strings.Contains(output.String(), "Submitted job job-1") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
		if len(stub.submitted) != 1 || stub.submitted[0].Source.ID != "PL123" {
			t.Errorf("unexpected submissions %+v", stub.submitted)
		}
	})

	t.Run("submit and wait", func(t *testing.T) {
		url := newAPIServer(t, &stubTransfers{jobs: scriptedJobs()})
		output := &bytes.Buffer{}

		args := append([]string{"transfer", "submit", "--server", url, "--wait", "--interval", "10ms"}, request...)
		if err := runCLI(t, newTestRunner(output), configPath, args...); err != nil {
			t.Fatalf("submit --wait failed: %v", err)
		}
		for _, want := range []string{"Processed 1/2 songs", "SUCCESS", "Yellow", "NoSuchArtist"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("submit rejects bad input locally", func(t *testing.T) {
		stub := &stubTransfers{jobs: scriptedJobs()}
		url := newAPIServer(t, stub)

		err := runCLI(t, newTestRunner(io.Discard), configPath,
			"transfer", "submit", "--server", url, "--session", "s1", "--direction", "sideways", "--source", "x")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(stub.submitted) != 0 {
			t.Error("invalid requests must not reach the server")
		}
	})

	t.Run("status saves a report", func(t *testing.T) {
		jobs := scriptedJobs()
		url := newAPIServer(t, &stubTransfers{jobs: jobs[1:]})
		report := filepath.Join(t.TempDir(), "report.csv")

		err := runCLI(t, newTestRunner(io.Discard), configPath, "transfer", "status", "--server", url, "--save", report, "job-1")
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if content := tu.MustReadFile(t, report); !strings.Contains(content, "transferred,Coldplay,Yellow") {
			t.Errorf("unexpected report:\n%s", content)
		}
	})

	t.Run("status of a failed job", func(t *testing.T) {
		failed := models.NewJob("job-1", models.TransferRequest{}, time.Now())
		failed.Fail(fmt.Errorf("%w: PL123", shared.ErrPlaylistNotFound), time.Now())
		url := newAPIServer(t, &stubTransfers{jobs: []*models.TransferJob{failed}})
		output := &bytes.Buffer{}

		err := runCLI(t, newTestRunner(output), configPath, "transfer", "status", "--server", url, "--json", "job-1")
		if err == nil || !strings.Contains(err.Error(), "NotFoundOrPrivate") {
			t.Errorf("expected a NotFoundOrPrivate error, got %v", err)
		}
		if !strings.Contains(output.String(), `"state": "FAILURE"`) {
			t.Errorf("expected the view to be printed:\n%s", output.String())
		}
	})

	t.Run("status requires a job id", func(t *testing.T) {
		err := runCLI(t, newTestRunner(io.Discard), configPath, "transfer", "status")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("run rejects bad input before opening storage", func(t *testing.T) {
		err := runCLI(t, newTestRunner(io.Discard), configPath,
			"transfer", "run", "--session", "s1", "--direction", "youtube-to-spotify", "--source", "https://youtube.com/watch?v=x")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("history", func(t *testing.T) {
		hConfig, dbPath := testConfig(t, "")
		db, err := shared.NewDatabase(dbPath)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
		jobs := repositories.NewJobRepository(db, time.Hour)
		for _, id := range []string{"old-job", "new-job"} {
			if err := jobs.Save(context.Background(), models.NewJob(id, models.TransferRequest{Direction: models.SpotifyToYouTube}, time.Now())); err != nil {
				t.Fatalf("failed to save job: %v", err)
			}
		}
		db.Close()

		output := &bytes.Buffer{}
		if err := runCLI(t, newTestRunner(output), hConfig, "transfer", "history", "--limit", "5"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "old-job") || !strings.Contains(out, "new-job") || strings.Index(out, "new-job") > strings.Index(out, "old-job") {
			t.Errorf("expected newest job first:\n%s", out)
		}
	})

	t.Run("history needs sqlite", func(t *testing.T) {
		memConfig := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(memConfig, []byte("[status]\nbackend = \"memory\"\n"), 0644)

		err := runCLI(t, newTestRunner(io.Discard), memConfig, "transfer", "history")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestWaitTerminal(t *testing.T) {
	t.Run("returns the terminal view", func(t *testing.T) {
		jobs := scriptedJobs()
		calls := 0
		view, err := waitTerminal(context.Background(), time.Millisecond, func(context.Context) (models.StatusView, error) {
			job := jobs[min(calls, len(jobs)-1)]
			calls++
			return job.View(), nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if view.State != models.StateSuccess || calls != 2 {
			t.Errorf("expected SUCCESS after 2 polls, got %s after %d", view.State, calls)
		}
	})

	t.Run("stops on fetch error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := waitTerminal(context.Background(), time.Millisecond, func(context.Context) (models.StatusView, error) {
			return models.StatusView{}, boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := waitTerminal(ctx, 5*time.Millisecond, func(context.Context) (models.StatusView, error) {
			return models.PendingJob("j").View(), nil
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got %v", err)
		}
	})
}

// blockingRunner holds each job until release is closed, then reports one more update.
type blockingRunner struct {
	store   status.Store
	started chan struct{}
	release chan struct{}
}

func (b *blockingRunner) Run(ctx context.Context, job *models.TransferJob, progress chan<- tasks.ProgressUpdate) *models.TransferJob {
	close(b.started)
	<-b.release
	progress <- tasks.ProgressUpdate{JobID: job.ID, Phase: tasks.Complete, Message: "done"}

	job = job.Clone()
	job.Succeed(models.NewResult(), time.Now())
	if err := b.store.Save(ctx, job); err != nil {
		job.Fail(err, time.Now())
	}
	return job
}

func TestStopLocal(t *testing.T) {
	ctx := context.Background()
	runner := newTestRunner(io.Discard)
	store := status.NewMemoryStore(time.Hour)
	blocked := &blockingRunner{store: store, started: make(chan struct{}), release: make(chan struct{})}

	updates := make(chan tasks.ProgressUpdate, 4)
	printed := make(chan struct{})
	var seen []tasks.ProgressUpdate
	go func() {
		defer close(printed)
		for u := range updates {
			seen = append(seen, u)
		}
	}()

	d := tasks.NewDispatcher(blocked, store, tasks.DispatcherOptions{
		Workers: 1,
		Updates: updates,
		Logger:  shared.NewLogger(io.Discard),
	})
	d.Start(ctx)

	id, err := d.Submit(ctx, models.TransferRequest{
		SessionID: "session-1",
		Direction: models.SpotifyToYouTube,
		Source:    models.PlaylistRef{ID: "37i9dQZF1DXcBWIGoYBM5M"},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	<-blocked.started

	if err := runner.stopLocal(ctx, d, 10*time.Millisecond, updates, printed); !errors.Is(err, shared.ErrTimeout) {
		t.Fatalf("expected a timeout while the worker runs, got %v", err)
	}

	close(blocked.release)
	if err := runner.stopLocal(ctx, d, 5*time.Second, updates, printed); err != nil {
		t.Fatalf("expected a clean stop once the worker finished, got %v", err)
	}

	if len(seen) != 1 || seen[0].Phase != tasks.Complete {
		t.Errorf("expected the late update to be delivered, got %+v", seen)
	}

	job, err := d.Status(ctx, id)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if job.State != models.StateSuccess {
		t.Errorf("expected SUCCESS, got %s (%s)", job.State, job.Error)
	}
}

func TestPlaylistsCommand(t *testing.T) {
	configPath, dbPath := testConfig(t, "")

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	err = repositories.NewCredentialRepository(db).Save(context.Background(), &models.Credential{
		SessionID:   "s1",
		Platform:    models.Spotify,
		AccessToken: "at",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	db.Close()
	if err != nil {
		t.Fatalf("failed to seed credential: %v", err)
	}

	spotify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/me":
			fmt.Fprint(w, `{"id":"ada","display_name":"Ada"}`)
		case "/me/playlists":
			fmt.Fprint(w, `{"items":[
				{"id":"pl1","name":"Road Trip","public":true,"owner":{"id":"ada","display_name":"Ada"},"tracks":{"total":12},"images":[{"url":"https://img/pl1"}]},
				{"id":"pl2","name":"Someone Else's Mix","public":true,"owner":{"id":"bob","display_name":"Bob"},"tracks":{"total":30}}
			],"next":""}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer spotify.Close()

	newRunner := func(output io.Writer) *Runner {
		return NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard), SpotifyURL: spotify.URL})
	}

	t.Run("table of owned playlists", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := runCLI(t, newRunner(output), configPath, "playlists", "--session", "s1", "spotify"); err != nil {
			t.Fatalf("playlists failed: %v", err)
		}
		out := output.String()
		for _, want := range []string{"Found 1 Spotify playlists", "Road Trip", "pl1", "public"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Someone Else's Mix") {
			t.Errorf("followed playlists should be filtered out:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := runCLI(t, newRunner(output), configPath, "playlists", "--session", "s1", "--json", "spotify"); err != nil {
			t.Fatalf("playlists failed: %v", err)
		}
		for _, want := range []string{`"id": "pl1"`, `"tracks_count": 12`, `"cover_image": "https://img/pl1"`} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("json missing %s:\n%s", want, output.String())
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"unknown platform", []string{"playlists", "--session", "s1", "tidal"}, shared.ErrInvalidArgument},
			{"missing session", []string{"playlists", "spotify"}, shared.ErrMissingArgument},
			{"not logged in", []string{"playlists", "--session", "s1", "youtube"}, shared.ErrNotAuthenticated},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := runCLI(t, newRunner(io.Discard), configPath, tt.args...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}
