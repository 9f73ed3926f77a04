package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

const (
	jobKey = "playlift:job:%s"
	// activeTTL bounds how long an abandoned PENDING or PROGRESS job lingers.
	activeTTL  = 24 * time.Hour
	maxRetries = 5
)

// RedisStore keeps snapshots as JSON strings in Redis so API servers and workers in
// different processes share job state.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore wraps an existing client. Finished jobs expire after retention; a zero
// retention keeps them as long as active jobs.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = activeTTL
	}
	return &RedisStore{client: client, retention: retention}
}

// OpenRedis connects to url (redis://host:port/db) and pings it.
func OpenRedis(ctx context.Context, url string, retention time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %v", shared.ErrInvalidConfig, err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to connect to Redis: %v", shared.ErrServiceUnavailable, err)
	}
	return NewRedisStore(client, retention), nil
}

// Save writes job under an optimistic WATCH on its key, retrying when another writer
// slips in between the read and the write.
func (s *RedisStore) Save(ctx context.Context, job *models.TransferJob) error {
	key := fmt.Sprintf(jobKey, job.ID)
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	ttl := activeTTL
	if job.State.Terminal() {
		ttl = s.retention
	}

	txf := func(tx *redis.Tx) error {
		prev, err := decode(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		if err := models.CheckTransition(prev, job); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}

	for range maxRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: job %s kept changing during save", shared.ErrServiceUnavailable, job.ID)
}

func (s *RedisStore) Load(ctx context.Context, id string) (*models.TransferJob, error) {
	job, err := decode(s.client.Get(ctx, fmt.Sprintf(jobKey, id)).Bytes())
	if err != nil {
		return nil, err
	}
	if job == nil {
		return models.PendingJob(id), nil
	}
	return job, nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// decode turns a GET reply into a job, mapping a missing key to nil.
func decode(data []byte, err error) (*models.TransferJob, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", shared.ErrServiceUnavailable, err)
	}

	var job models.TransferJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
