package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// Manager resolves unexpired credentials for a session.
type Manager struct {
	store      Store
	refreshers map[models.Platform]Refresher
	logger     *log.Logger
	now        func() time.Time

	locks sync.Map // credentialKey -> *sync.Mutex
}

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager over store using refreshers per platform.
func NewManager(store Store, refreshers map[models.Platform]Refresher, logger *log.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	m := &Manager{store: store, refreshers: refreshers, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Put stores a credential obtained by the authorization flow.
func (m *Manager) Put(ctx context.Context, c *models.Credential) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.UpdatedAt = m.now()
	return m.store.Save(ctx, c)
}

// Logout destroys every credential of a session.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	return m.store.DeleteSession(ctx, sessionID)
}

// Lookup returns the stored credential without refreshing it.
func (m *Manager) Lookup(ctx context.Context, sessionID string, p models.Platform) (*models.Credential, error) {
	return m.store.Get(ctx, sessionID, p)
}

// Valid returns a credential for (sessionID, p) that is not expired, refreshing it in place
// when it is.
func (m *Manager) Valid(ctx context.Context, sessionID string, p models.Platform) (*models.Credential, error) {
	c, err := m.store.Get(ctx, sessionID, p)
	if err != nil {
		return nil, err
	}
	if !c.Expired(m.now()) {
		return c, nil
	}

	mu := m.lock(credentialKey{sessionID, p})
	mu.Lock()
	defer mu.Unlock()

	// another job may have refreshed while we waited
	c, err = m.store.Get(ctx, sessionID, p)
	if err != nil {
		return nil, err
	}
	if !c.Expired(m.now()) {
		return c, nil
	}
	return m.refresh(ctx, c)
}

func (m *Manager) refresh(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	if !c.CanRefresh() {
		return nil, fmt.Errorf("%w: %s credential expired", shared.ErrNoRefreshToken, c.Platform.Title())
	}
	r, ok := m.refreshers[c.Platform]
	if !ok {
		return nil, fmt.Errorf("%w: no refresher for %s", shared.ErrRefreshFailed, c.Platform.Title())
	}

	tok, err := r.Refresh(ctx, c)
	if err != nil {
		m.logger.Warn("credential refresh failed", "platform", c.Platform, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrRefreshFailed, c.Platform.Title(), err)
	}

	c.AccessToken = tok.AccessToken
	c.ExpiresAt = tok.Expiry
	if tok.TokenType != "" {
		c.TokenType = tok.TokenType
	}
	if tok.RefreshToken != "" {
		c.RefreshToken = tok.RefreshToken
	}
	c.UpdatedAt = m.now()

	if err := m.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save refreshed credential: %w", err)
	}
	m.logger.Debug("credential refreshed", "platform", c.Platform, "expires_at", c.ExpiresAt)
	return c, nil
}

func (m *Manager) lock(k credentialKey) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(k, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// TokenSource adapts the Manager to [oauth2.TokenSource] for one credential. Every Token call
// goes through [Manager.Valid], so a credential that expires mid-transfer is refreshed before
// the next request.
func (m *Manager) TokenSource(ctx context.Context, sessionID string, p models.Platform) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, m: m, session: sessionID, platform: p}
}

type tokenSource struct {
	ctx      context.Context
	m        *Manager
	session  string
	platform models.Platform
}

func (t *tokenSource) Token() (*oauth2.Token, error) {
	c, err := t.m.Valid(t.ctx, t.session, t.platform)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: c.AccessToken, TokenType: c.TokenType, RefreshToken: c.RefreshToken, Expiry: c.ExpiresAt}, nil
}
