package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

const jobColumns = `
	id, sequence, request, state, current, total, progress, status,
	result, error, error_kind, created_at, updated_at, finished_at
`

// JobRepository stores transfer job snapshots in the transfer_jobs table.
//
// Finished jobs stay readable for the retention window; after that Load reports them as
// unknown (PENDING) and [JobRepository.Sweep] deletes them.
type JobRepository struct {
	db        *sql.DB
	retention time.Duration
	now       func() time.Time
}

// NewJobRepository creates a new JobRepository. A retention of zero keeps finished jobs forever.
func NewJobRepository(db *sql.DB, retention time.Duration) *JobRepository {
	return &JobRepository{db: db, retention: retention, now: time.Now}
}

// Save inserts or updates a job snapshot after checking it against the stored one.
func (r *JobRepository) Save(ctx context.Context, job *models.TransferJob) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	prev, err := scanJob(tx.QueryRowContext(ctx, "SELECT"+jobColumns+"FROM transfer_jobs WHERE id = ?", job.ID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err := models.CheckTransition(prev, job); err != nil {
		return err
	}

	request, err := json.Marshal(job.Request)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	var result any
	if job.Result != nil {
		b, err := json.Marshal(job.Result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		result = string(b)
	}

	if prev == nil {
		sequence, err := nextSequence(ctx, tx, "transfer_jobs")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		query := `
			INSERT INTO transfer_jobs (
				id, sequence, request, state, current, total, progress, status,
				result, error, error_kind, created_at, updated_at, finished_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			job.ID,
			sequence,
			string(request),
			string(job.State),
			job.Current,
			job.Total,
			job.Progress,
			nullString(job.Status),
			result,
			nullString(job.Error),
			nullString(string(job.ErrorKind)),
			job.CreatedAt.UTC(),
			job.UpdatedAt.UTC(),
			nullTime(job.FinishedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert job: %w", err)
		}
	} else {
		query := `
			UPDATE transfer_jobs
			SET state = ?, current = ?, total = ?, progress = ?, status = ?,
				result = ?, error = ?, error_kind = ?, updated_at = ?, finished_at = ?
			WHERE id = ?
		`
		_, err = tx.ExecContext(ctx, query,
			string(job.State),
			job.Current,
			job.Total,
			job.Progress,
			nullString(job.Status),
			result,
			nullString(job.Error),
			nullString(string(job.ErrorKind)),
			job.UpdatedAt.UTC(),
			nullTime(job.FinishedAt),
			job.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job: %w", err)
	}
	return nil
}

// Load returns the stored job, or a PENDING placeholder for unknown and expired ids.
func (r *JobRepository) Load(ctx context.Context, id string) (*models.TransferJob, error) {
	job, err := scanJob(r.db.QueryRowContext(ctx, "SELECT"+jobColumns+"FROM transfer_jobs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PendingJob(id), nil
	}
	if err != nil {
		return nil, err
	}
	if r.expired(job) {
		return models.PendingJob(id), nil
	}
	return job, nil
}

// List returns up to limit jobs, most recently submitted first.
func (r *JobRepository) List(ctx context.Context, limit int) ([]*models.TransferJob, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", shared.ErrInvalidArgument)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT"+jobColumns+"FROM transfer_jobs ORDER BY sequence DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.TransferJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		if !r.expired(job) {
			jobs = append(jobs, job)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return jobs, nil
}

// Sweep deletes finished jobs older than the retention window and returns how many went.
func (r *JobRepository) Sweep(ctx context.Context) (int, error) {
	if r.retention <= 0 {
		return 0, nil
	}

	cutoff := r.now().Add(-r.retention).UTC()
	result, err := r.db.ExecContext(ctx, "DELETE FROM transfer_jobs WHERE finished_at IS NOT NULL AND finished_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep jobs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

func (r *JobRepository) expired(job *models.TransferJob) bool {
	if r.retention <= 0 || job.FinishedAt.IsZero() {
		return false
	}
	return r.now().Sub(job.FinishedAt) > r.retention
}

// scanJob scans one transfer_jobs row. The sequence only orders rows and is discarded.
func scanJob(row scanner) (*models.TransferJob, error) {
	var (
		job        models.TransferJob
		sequence   int
		request    sql.NullString
		state      string
		status     sql.NullString
		result     sql.NullString
		errMessage sql.NullString
		errorKind  sql.NullString
		finishedAt sql.NullTime
	)

	err := row.Scan(
		&job.ID, &sequence, &request, &state, &job.Current, &job.Total,
		&job.Progress, &status, &result, &errMessage, &errorKind,
		&job.CreatedAt, &job.UpdatedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job.State = models.State(state)
	job.Status = status.String
	job.Error = errMessage.String
	job.ErrorKind = shared.Kind(errorKind.String)
	if finishedAt.Valid {
		job.FinishedAt = finishedAt.Time
	}

	if request.Valid {
		if err := json.Unmarshal([]byte(request.String), &job.Request); err != nil {
			return nil, fmt.Errorf("failed to decode request of job %s: %w", job.ID, err)
		}
	}
	if result.Valid {
		job.Result = models.NewResult()
		if err := json.Unmarshal([]byte(result.String), job.Result); err != nil {
			return nil, fmt.Errorf("failed to decode result of job %s: %w", job.ID, err)
		}
	}
	return &job, nil
}
