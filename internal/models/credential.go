package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/playlift/internal/shared"
)

// ExpirySkew is how early a credential counts as expired, so a token never reaches
// the platform with only seconds left on it.
const ExpirySkew = 30 * time.Second

// Credential holds OAuth tokens for one user session on one platform.
type Credential struct {
	SessionID    string    `json:"session_id"`
	Platform     Platform  `json:"platform"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// Expired reports whether the access token must be refreshed before use at now.
// A zero ExpiresAt means the token does not expire.
func (c *Credential) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt.Add(-ExpirySkew))
}

// CanRefresh reports whether a refresh token is present.
func (c *Credential) CanRefresh() bool {
	return c.RefreshToken != ""
}

// Validate checks that the credential is addressable and carries a token.
func (c *Credential) Validate() error {
	switch {
	case c.SessionID == "":
		return fmt.Errorf("%w: credential has no session", shared.ErrInvalidCredentials)
	case c.Platform != Spotify && c.Platform != YouTube:
		return fmt.Errorf("%w: credential platform %q", shared.ErrInvalidCredentials, c.Platform)
	case c.AccessToken == "":
		return fmt.Errorf("%w: credential has no access token", shared.ErrInvalidCredentials)
	}
	return nil
}
