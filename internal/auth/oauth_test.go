package auth

import (
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

func TestOAuthConfigs(t *testing.T) {
	configs := OAuthConfigs(shared.CredentialsConfig{
		Spotify: shared.OAuthClientConfig{ClientID: "sp", RedirectURI: "http://127.0.0.1:3000/callback"},
		YouTube: shared.OAuthClientConfig{ClientID: "yt"},
	})

	if configs[models.Spotify].ClientID != "sp" || configs[models.Spotify].Endpoint.TokenURL == "" {
		t.Errorf("unexpected spotify config %+v", configs[models.Spotify])
	}
	if configs[models.YouTube].Endpoint.TokenURL != "https://oauth2.googleapis.com/token" {
		t.Errorf("unexpected google token url %s", configs[models.YouTube].Endpoint.TokenURL)
	}

	refreshers := Refreshers(configs, nil)
	if len(refreshers) != 2 {
		t.Errorf("expected 2 refreshers, got %d", len(refreshers))
	}
}

func TestCredentialFromToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	tok := (&oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: expiry}).
		WithExtra(map[string]any{"scope": "playlist-read-private user-library-modify"})

	c := CredentialFromToken("s1", models.Spotify, tok)
	if c.AccessToken != "a" || c.RefreshToken != "r" || !c.ExpiresAt.Equal(expiry) {
		t.Errorf("unexpected credential %+v", c)
	}
	if len(c.Scopes) != 2 || c.Scopes[1] != "user-library-modify" {
		t.Errorf("unexpected scopes %v", c.Scopes)
	}
}
