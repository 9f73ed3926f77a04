package models

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/desertthunder/playlift/internal/shared"
)

// State is the lifecycle state of a transfer job.
type State string

const (
	StatePending  State = "PENDING"
	StateProgress State = "PROGRESS"
	StateSuccess  State = "SUCCESS"
	StateFailure  State = "FAILURE"
)

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// PendingStatus is the status text of a job that has not started or is unknown.
const PendingStatus = "Waiting to start"

// TransferRequest is what a caller submits to start a transfer.
type TransferRequest struct {
	SessionID   string      `json:"session_id"`
	Direction   Direction   `json:"direction"`
	Source      PlaylistRef `json:"source"`
	Destination PlaylistRef `json:"destination"`
}

// Validate checks the request and fills in the platforms implied by the direction.
func (r *TransferRequest) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("%w: session_id is required", shared.ErrInvalidInput)
	}
	if !r.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", shared.ErrInvalidInput, r.Direction)
	}
	if r.Source.ID == "" {
		return fmt.Errorf("%w: source playlist is required", shared.ErrInvalidInput)
	}

	for _, side := range []struct {
		ref  *PlaylistRef
		want Platform
		name string
	}{
		{&r.Source, r.Direction.Source(), "source"},
		{&r.Destination, r.Direction.Destination(), "destination"},
	} {
		if side.ref.Platform == "" {
			side.ref.Platform = side.want
		}
		if side.ref.Platform != side.want {
			return fmt.Errorf("%w: %s platform %s does not match direction %s",
				shared.ErrInvalidInput, side.name, side.ref.Platform, r.Direction)
		}
	}
	return nil
}

// TransferredTrack is a successfully written track, described by the destination candidate.
type TransferredTrack struct {
	Artist     string `json:"artist"`
	Track      string `json:"track"`
	ArtworkURL string `json:"artwork_url"`
	ID         string `json:"id,omitempty"`
}

// FailedTrack is a source track that could not be matched or written.
type FailedTrack struct {
	Artist string `json:"artist"`
	Track  string `json:"track"`
	Reason string `json:"reason"`
}

// Outcome is a counted list of per-track results.
type Outcome[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

func (o *Outcome[T]) add(item T) {
	o.Items = append(o.Items, item)
	o.Count = len(o.Items)
}

// Result is the payload of a successful job.
type Result struct {
	Successful Outcome[TransferredTrack] `json:"successful"`
	Failed     Outcome[FailedTrack]      `json:"failed"`
}

// NewResult returns an empty result whose item lists encode as [] rather than null.
func NewResult() *Result {
	return &Result{
		Successful: Outcome[TransferredTrack]{Items: []TransferredTrack{}},
		Failed:     Outcome[FailedTrack]{Items: []FailedTrack{}},
	}
}

// AddSuccess records c as the written equivalent of a source track.
func (r *Result) AddSuccess(c Candidate) {
	r.Successful.add(TransferredTrack{Artist: c.Artist, Track: c.Name, ArtworkURL: c.ArtworkURL, ID: c.ID})
}

// AddFailure records t as failed with reason.
func (r *Result) AddFailure(t Track, reason string) {
	r.Failed.add(FailedTrack{Artist: t.Artist, Track: t.Title, Reason: reason})
}

// Len returns the number of tracks accounted for.
func (r *Result) Len() int {
	return r.Successful.Count + r.Failed.Count
}

func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	return &Result{
		Successful: Outcome[TransferredTrack]{Count: r.Successful.Count, Items: slices.Clone(r.Successful.Items)},
		Failed:     Outcome[FailedTrack]{Count: r.Failed.Count, Items: slices.Clone(r.Failed.Items)},
	}
}

// TransferJob is a snapshot of one transfer's observable state.
type TransferJob struct {
	ID         string          `json:"id"`
	Request    TransferRequest `json:"request"`
	State      State           `json:"state"`
	Current    int             `json:"current"`
	Total      int             `json:"total"`
	Progress   float64         `json:"progress_pct"`
	Status     string          `json:"status,omitempty"`
	Result     *Result         `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorKind  shared.Kind     `json:"error_type,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	FinishedAt time.Time       `json:"finished_at,omitzero"`
}

// NewJob returns a PENDING job for req.
func NewJob(id string, req TransferRequest, now time.Time) *TransferJob {
	return &TransferJob{
		ID:        id,
		Request:   req,
		State:     StatePending,
		Status:    PendingStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PendingJob is what a store reports for an id it does not know.
func PendingJob(id string) *TransferJob {
	return &TransferJob{ID: id, State: StatePending, Status: PendingStatus}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (j *TransferJob) Clone() *TransferJob {
	c := *j
	c.Result = j.Result.clone()
	return &c
}

// Advance moves the job to PROGRESS at current of total.
func (j *TransferJob) Advance(current, total int, status string, now time.Time) {
	j.State = StateProgress
	j.Current = current
	j.Total = total
	j.Progress = percent(current, total)
	j.Status = status
	j.UpdatedAt = now
}

// Succeed marks the job SUCCESS with result.
func (j *TransferJob) Succeed(result *Result, now time.Time) {
	j.State = StateSuccess
	j.Result = result
	j.Current = j.Total
	j.Progress = 100
	j.Status = fmt.Sprintf("Transferred %d of %d songs", result.Successful.Count, j.Total)
	j.UpdatedAt = now
	j.FinishedAt = now
}

// Fail marks the job FAILURE with err classified into an error kind.
func (j *TransferJob) Fail(err error, now time.Time) {
	j.State = StateFailure
	j.Error = err.Error()
	j.ErrorKind = shared.KindOf(err)
	j.Status = ""
	j.UpdatedAt = now
	j.FinishedAt = now
}

// CheckTransition reports whether next may replace prev in a status store.
// prev may be nil for a job the store has not seen.
func CheckTransition(prev, next *TransferJob) error {
	if next.Total > 0 && next.Current > next.Total {
		return fmt.Errorf("%w: current %d exceeds total %d", shared.ErrInvalidInput, next.Current, next.Total)
	}
	if prev == nil {
		return nil
	}
	switch {
	case prev.State.Terminal():
		return fmt.Errorf("%w: %s is %s", shared.ErrTerminalState, prev.ID, prev.State)
	case next.Current < prev.Current:
		return fmt.Errorf("%w: %s from %d to %d", shared.ErrStaleProgress, prev.ID, prev.Current, next.Current)
	case prev.State == StateProgress && next.Total != prev.Total:
		return fmt.Errorf("%w: total of %s changed from %d to %d", shared.ErrInvalidInput, prev.ID, prev.Total, next.Total)
	}
	return nil
}

// StatusView is the caller-facing shape of a job, varying by state.
type StatusView struct {
	JobID     string      `json:"job_id"`
	State     State       `json:"state"`
	Current   *int        `json:"current,omitempty"`
	Total     *int        `json:"total,omitempty"`
	Progress  *float64    `json:"progress_pct,omitempty"`
	Status    string      `json:"status,omitempty"`
	Result    *Result     `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind shared.Kind `json:"error_type,omitempty"`
}

// View renders the job for a status query.
func (j *TransferJob) View() StatusView {
	v := StatusView{JobID: j.ID, State: j.State}
	switch j.State {
	case StatePending:
		zero := 0.0
		v.Progress = &zero
		v.Status = PendingStatus
	case StateProgress:
		current, total, progress := j.Current, j.Total, j.Progress
		v.Current, v.Total, v.Progress = &current, &total, &progress
		v.Status = j.Status
	case StateSuccess:
		v.Result = j.Result.clone()
		v.Status = j.Status
	case StateFailure:
		v.Error = j.Error
		v.ErrorKind = j.ErrorKind
	}
	return v
}

func percent(current, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(current)/float64(total)*10000) / 100
}
