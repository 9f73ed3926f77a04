package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
	th "github.com/desertthunder/playlift/internal/testing"
)

func finishedView() models.StatusView {
	now := time.Now()
	job := models.NewJob("job-1", models.TransferRequest{}, now)
	job.Advance(0, 3, "", now)

	result := models.NewResult()
	result.AddSuccess(models.Candidate{ID: "a", Name: "Yellow", Artist: "Coldplay", ArtworkURL: "https://img/yellow.jpg"})
	result.AddSuccess(models.Candidate{ID: "b", Name: "Clocks", Artist: "Coldplay"})
	result.AddFailure(models.Track{Artist: "NoSuchArtist", Title: "Nothing"}, "No results found for 'NoSuchArtist - Nothing'")
	job.Succeed(result, now)
	return job.View()
}

func progressView() models.StatusView {
	now := time.Now()
	job := models.NewJob("job-2", models.TransferRequest{}, now)
	job.Advance(4, 10, "Processed 4/10 songs", now)
	return job.View()
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(finishedView())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header and 3 rows, got %d lines:\n%s", len(lines), output)
		}
		if lines[0] != "Outcome,Artist,Track,Detail" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != "transferred,Coldplay,Yellow,https://img/yellow.jpg" {
			t.Errorf("unexpected first row %q", lines[1])
		}
		if lines[3] != "failed,NoSuchArtist,Nothing,No results found for 'NoSuchArtist - Nothing'" {
			t.Errorf("unexpected failed row %q", lines[3])
		}
	})

	t.Run("ExportToCSV without result", func(t *testing.T) {
		_, err := ExportToCSV(progressView())
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(finishedView())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Transfer job-1",
			"**State**: SUCCESS",
			"**Status**: Transferred 2 of 3 songs",
			"## Transferred (2)",
			"1. ![cover](https://img/yellow.jpg) Coldplay - Yellow",
			"2. Coldplay - Clocks",
			"## Failed (1)",
			"1. NoSuchArtist - Nothing: No results found",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown failure", func(t *testing.T) {
		job := models.NewJob("job-3", models.TransferRequest{}, time.Now())
		job.Fail(shared.ErrNotAuthenticated, time.Now())

		data, err := ExportToMarkdown(job.View())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "**Error**: not authenticated (AuthError)") {
			t.Errorf("Markdown missing error line:\n%s", data)
		}
		if strings.Contains(string(data), "## Transferred") {
			t.Error("failed jobs have no track sections")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(finishedView())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Job: job-1", "Transferred: 2", "  ✓ Coldplay - Yellow", "Failed: 1", "  ✗ NoSuchArtist - Nothing"} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText progress", func(t *testing.T) {
		data, _ := ExportToText(progressView())
		if !strings.Contains(string(data), "Progress: 4/10 (40%)") {
			t.Errorf("text missing progress line:\n%s", data)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(finishedView(), false)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded models.StatusView
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.State != models.StateSuccess || decoded.Result.Successful.Count != 2 {
			t.Errorf("unexpected decoded view %+v", decoded)
		}
		if strings.Count(string(data), "\n") != 1 {
			t.Error("compact JSON should be a single line")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{".CSV", FormatCSV},
		{"markdown", FormatMarkdown},
		{".md", FormatMarkdown},
		{"text", FormatText},
		{"json", FormatJSON},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	view := finishedView()

	t.Run("WithDefaultPath", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path, err := WriteExport(view, "", "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "job-1_transfer.txt" {
			t.Errorf("expected job-1_transfer.txt, got %s", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("FormatFromExtension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "out.csv")

		got, err := WriteExport(view, path, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "Outcome,Artist,Track,Detail") {
			t.Errorf("expected CSV content, got %s", content)
		}
	})

	t.Run("ExplicitFormatWins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.log")

		if _, err := WriteExport(view, path, FormatJSON); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, `"job_id": "job-1"`) {
			t.Errorf("expected pretty JSON, got %s", content)
		}
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		_, err := WriteExport(view, filepath.Join(t.TempDir(), "out.xml"), "")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("NoResultForCSV", func(t *testing.T) {
		_, err := WriteExport(progressView(), filepath.Join(t.TempDir(), "out.csv"), "")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestTables(t *testing.T) {
	t.Run("RenderTable", func(t *testing.T) {
		out := RenderTable([]string{"A", "B"}, [][]string{{"1", "x"}, {"2"}}, []Align{AlignRight})
		for _, want := range []string{"╭", "A", "B", "x"} {
			if !strings.Contains(out, want) {
				t.Errorf("table missing %q:\n%s", want, out)
			}
		}
		if RenderTable(nil, nil, nil) != "" {
			t.Error("no headers should render nothing")
		}
	})

	t.Run("ResultTable", func(t *testing.T) {
		out := ResultTable(finishedView())
		for _, want := range []string{"Yellow", "Clocks", "NoSuchArtist", "No results found"} {
			if !strings.Contains(out, want) {
				t.Errorf("result table missing %q:\n%s", want, out)
			}
		}
		if ResultTable(progressView()) != "" {
			t.Error("views without a result render no table")
		}
	})

	t.Run("CredentialTable", func(t *testing.T) {
		now := time.Now()
		out := CredentialTable([]*models.Credential{
			{Platform: models.Spotify, AccessToken: "a", RefreshToken: "r", ExpiresAt: now.Add(time.Hour), UpdatedAt: now},
			{Platform: models.YouTube, AccessToken: "b", ExpiresAt: now.Add(-time.Hour), UpdatedAt: now},
		}, now)
		for _, want := range []string{"Spotify", "YouTube", "expired", "yes", "no"} {
			if !strings.Contains(out, want) {
				t.Errorf("credential table missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("PlaylistTable", func(t *testing.T) {
		out := PlaylistTable([]models.Playlist{
			{Platform: models.Spotify, ID: "37i9dQZF1DXcBWIGoYBM5M", Name: "Road Trip", TracksCount: 42, Owner: "Ada", Public: true},
			{Platform: models.Spotify, ID: "5ABHKGoOzxkaa28ttQV9sE", Name: "Late Nights", TracksCount: 7, Owner: "Ada"},
		})
		for _, want := range []string{"Road Trip", "42", "public", "Late Nights", "private", "37i9dQZF1DXcBWIGoYBM5M"} {
			if !strings.Contains(out, want) {
				t.Errorf("playlist table missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("Summary", func(t *testing.T) {
		out := Summary(progressView())
		for _, want := range []string{"job-2", "PROGRESS", "4/10", "40.0%", "Processed 4/10 songs"} {
			if !strings.Contains(out, want) {
				t.Errorf("summary missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("ProgressBar clamps", func(t *testing.T) {
		if out := ProgressBar(150, 10); !strings.Contains(out, "100.0%") {
			t.Errorf("expected clamp to 100%%, got %s", out)
		}
		if out := ProgressBar(-5, 10); !strings.Contains(out, "0.0%") {
			t.Errorf("expected clamp to 0%%, got %s", out)
		}
	})
}
