package auth

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// Store persists credentials keyed by (session, platform).
type Store interface {
	// Get returns [shared.ErrNotAuthenticated] when nothing is stored.
	Get(ctx context.Context, sessionID string, p models.Platform) (*models.Credential, error)
	Save(ctx context.Context, c *models.Credential) error
	DeleteSession(ctx context.Context, sessionID string) error
}

type credentialKey struct {
	session  string
	platform models.Platform
}

// MemoryStore is a process-local [Store].
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[credentialKey]models.Credential
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[credentialKey]models.Credential)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string, p models.Platform) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creds[credentialKey{sessionID, p}]
	if !ok {
		return nil, fmt.Errorf("%w: no %s credential for session", shared.ErrNotAuthenticated, p.Title())
	}
	c.Scopes = slices.Clone(c.Scopes)
	return &c, nil
}

func (s *MemoryStore) Save(ctx context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *c
	stored.Scopes = slices.Clone(c.Scopes)
	s.creds[credentialKey{c.SessionID, c.Platform}] = stored
	return nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.creds {
		if k.session == sessionID {
			delete(s.creds, k)
		}
	}
	return nil
}
