package status

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/playlift/internal/models"
)

// MemoryStore keeps snapshots in process memory.
//
// Finished jobs older than the retention window read as unknown and are removed by
// [MemoryStore.Sweep]. A zero retention keeps them forever.
type MemoryStore struct {
	mu        sync.RWMutex
	jobs      map[string]*models.TransferJob
	retention time.Duration
	now       func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	return &MemoryStore{
		jobs:      make(map[string]*models.TransferJob),
		retention: retention,
		now:       time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, job *models.TransferJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.jobs[job.ID]
	if prev != nil && s.expired(prev) {
		prev = nil
	}
	if err := models.CheckTransition(prev, job); err != nil {
		return err
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*models.TransferJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok || s.expired(job) {
		return models.PendingJob(id), nil
	}
	return job.Clone(), nil
}

// Sweep drops expired jobs and returns how many went.
func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, job := range s.jobs {
		if s.expired(job) {
			delete(s.jobs, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored jobs, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *MemoryStore) expired(job *models.TransferJob) bool {
	if s.retention <= 0 || job.FinishedAt.IsZero() {
		return false
	}
	return s.now().Sub(job.FinishedAt) > s.retention
}
