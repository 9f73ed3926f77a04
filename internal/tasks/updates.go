package tasks

import (
	"fmt"

	"github.com/desertthunder/playlift/internal/models"
)

// ProgressUpdate represents a progress event during a transfer.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	JobID   string // Job the update belongs to
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, e.g. the final job
}

// Operation phase enumeration
type Phase int

const (
	Authorize Phase = iota
	FetchSource
	TransferTracks
	Complete
	Failed
)

func (p Phase) String() string {
	switch p {
	case Authorize:
		return "authorize"
	case FetchSource:
		return "fetch_source"
	case TransferTracks:
		return "transfer_tracks"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

func authorizeUpdate(id string, step, total int, p models.Platform) ProgressUpdate {
	return ProgressUpdate{
		JobID:   id,
		Phase:   Authorize,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Checking %s credentials...", p.Title()),
	}
}

func fetchSourceUpdate(id string, ref models.PlaylistRef) ProgressUpdate {
	name := ref.ID
	if ref.IsDefault() {
		name = "default collection"
	}
	return ProgressUpdate{
		JobID:   id,
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist from %s (%s)...", ref.Platform.Title(), name),
	}
}

func trackUpdate(id string, step, total int, t models.Track, reason string) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, t)
	if reason != "" {
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, t, reason)
	}
	return ProgressUpdate{
		JobID:   id,
		Phase:   TransferTracks,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func completeUpdate(job *models.TransferJob) ProgressUpdate {
	return ProgressUpdate{
		JobID:   job.ID,
		Phase:   Complete,
		Step:    job.Total,
		Total:   job.Total,
		Message: job.Status,
		Data:    job.Clone(),
	}
}

func failedUpdate(job *models.TransferJob) ProgressUpdate {
	return ProgressUpdate{
		JobID:   job.ID,
		Phase:   Failed,
		Step:    job.Current,
		Total:   job.Total,
		Message: fmt.Sprintf("%s: %s", job.ErrorKind, job.Error),
		Data:    job.Clone(),
	}
}
