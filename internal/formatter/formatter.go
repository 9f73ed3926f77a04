// package formatter renders transfer results for the terminal and exports them to files (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
}

// Export renders view in format f.
func Export(view models.StatusView, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(view)
	case FormatMarkdown:
		return ExportToMarkdown(view)
	case FormatText:
		return ExportToText(view)
	case FormatJSON:
		return ExportToJSON(view, true)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
}

// ExportToCSV converts a finished transfer to CSV with columns: Outcome, Artist, Track, Detail.
//
// Detail is the artwork URL of a transferred track or the reason a track failed.
func ExportToCSV(view models.StatusView) ([]byte, error) {
	if view.Result == nil {
		return nil, fmt.Errorf("%w: job %s has no result (%s)", shared.ErrInvalidArgument, view.JobID, view.State)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Outcome", "Artist", "Track", "Detail"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range view.Result.Successful.Items {
		if err := writer.Write([]string{"transferred", t.Artist, t.Track, t.ArtworkURL}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	for _, t := range view.Result.Failed.Items {
		if err := writer.Write([]string{"failed", t.Artist, t.Track, t.Reason}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a job view to a Markdown report.
func ExportToMarkdown(view models.StatusView) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Transfer %s\n\n", view.JobID)
	fmt.Fprintf(&buf, "**State**: %s\n", view.State)
	if view.Status != "" {
		fmt.Fprintf(&buf, "**Status**: %s\n", view.Status)
	}
	if view.Error != "" {
		fmt.Fprintf(&buf, "**Error**: %s (%s)\n", view.Error, view.ErrorKind)
	}

	if view.Result == nil {
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "\n## Transferred (%d)\n\n", view.Result.Successful.Count)
	for i, t := range view.Result.Successful.Items {
		if t.ArtworkURL != "" {
			fmt.Fprintf(&buf, "%d. ![cover](%s) %s - %s\n", i+1, t.ArtworkURL, t.Artist, t.Track)
		} else {
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, t.Artist, t.Track)
		}
	}

	fmt.Fprintf(&buf, "\n## Failed (%d)\n\n", view.Result.Failed.Count)
	for i, t := range view.Result.Failed.Items {
		fmt.Fprintf(&buf, "%d. %s - %s: %s\n", i+1, t.Artist, t.Track, t.Reason)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a job view to plain text.
func ExportToText(view models.StatusView) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Job: %s\n", view.JobID)
	fmt.Fprintf(&buf, "State: %s\n", view.State)
	if view.Current != nil && view.Total != nil {
		fmt.Fprintf(&buf, "Progress: %d/%d (%.0f%%)\n", *view.Current, *view.Total, *view.Progress)
	}
	if view.Status != "" {
		fmt.Fprintf(&buf, "Status: %s\n", view.Status)
	}
	if view.Error != "" {
		fmt.Fprintf(&buf, "Error: %s: %s\n", view.ErrorKind, view.Error)
	}

	if view.Result != nil {
		fmt.Fprintf(&buf, "\nTransferred: %d\n", view.Result.Successful.Count)
		for _, t := range view.Result.Successful.Items {
			fmt.Fprintf(&buf, "  ✓ %s - %s\n", t.Artist, t.Track)
		}
		fmt.Fprintf(&buf, "Failed: %d\n", view.Result.Failed.Count)
		for _, t := range view.Result.Failed.Items {
			fmt.Fprintf(&buf, "  ✗ %s - %s: %s\n", t.Artist, t.Track, t.Reason)
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the view exactly as the status endpoint does.
func ExportToJSON(view models.StatusView, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(view, "", "  ")
	} else {
		data, err = json.Marshal(view)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport writes view to path. The format defaults to the path's extension.
//
// Defaults to {job id}_transfer.txt as the filename.
func WriteExport(view models.StatusView, path string, f Format) (string, error) {
	if path == "" {
		if f == "" {
			f = FormatText
		}
		path = fmt.Sprintf("%s_transfer.%s", view.JobID, f)
	}
	if f == "" {
		var err error
		if f, err = ParseFormat(filepath.Ext(path)); err != nil {
			return "", err
		}
	}

	data, err := Export(view, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}
