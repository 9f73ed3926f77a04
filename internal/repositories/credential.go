package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// CredentialRepository persists OAuth credentials in the credentials table.
//
// It satisfies auth.Store, so tokens obtained by `playlift auth login` survive restarts.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new CredentialRepository with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get returns the credential for (sessionID, p) or [shared.ErrNotAuthenticated].
func (r *CredentialRepository) Get(ctx context.Context, sessionID string, p models.Platform) (*models.Credential, error) {
	query := `
		SELECT session_id, platform, access_token, refresh_token, token_type, scopes, expires_at, updated_at
		FROM credentials
		WHERE session_id = ? AND platform = ?
	`

	c, err := scanCredential(r.db.QueryRowContext(ctx, query, sessionID, string(p)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no %s credential for session", shared.ErrNotAuthenticated, p.Title())
	}
	return c, err
}

// Save inserts or replaces the credential.
func (r *CredentialRepository) Save(ctx context.Context, c *models.Credential) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
		INSERT INTO credentials (
			session_id, platform, access_token, refresh_token, token_type, scopes, expires_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, platform) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			scopes = excluded.scopes,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		c.SessionID,
		string(c.Platform),
		c.AccessToken,
		nullString(c.RefreshToken),
		nullString(c.TokenType),
		nullString(strings.Join(c.Scopes, " ")),
		nullTime(c.ExpiresAt),
		updatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// DeleteSession removes every credential of a session.
func (r *CredentialRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM credentials WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// List returns the credentials stored for a session, ordered by platform.
func (r *CredentialRepository) List(ctx context.Context, sessionID string) ([]*models.Credential, error) {
	query := `
		SELECT session_id, platform, access_token, refresh_token, token_type, scopes, expires_at, updated_at
		FROM credentials
		WHERE session_id = ?
		ORDER BY platform
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return creds, nil
}

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(row scanner) (*models.Credential, error) {
	var (
		c            models.Credential
		platform     string
		refreshToken sql.NullString
		tokenType    sql.NullString
		scopes       sql.NullString
		expiresAt    sql.NullTime
	)

	err := row.Scan(
		&c.SessionID, &platform, &c.AccessToken, &refreshToken,
		&tokenType, &scopes, &expiresAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan credential: %w", err)
	}

	c.Platform = models.Platform(platform)
	c.RefreshToken = refreshToken.String
	c.TokenType = tokenType.String
	if scopes.String != "" {
		c.Scopes = strings.Fields(scopes.String)
	}
	if expiresAt.Valid {
		c.ExpiresAt = expiresAt.Time
	}
	return &c, nil
}
