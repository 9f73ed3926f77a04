package auth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/services"
	"github.com/desertthunder/playlift/internal/shared"
)

// Refresher exchanges a credential's refresh token for a new token.
type Refresher interface {
	Refresh(ctx context.Context, c *models.Credential) (*oauth2.Token, error)
}

// OAuthRefresher refreshes through an [oauth2.Config] token endpoint.
type OAuthRefresher struct {
	Config     *oauth2.Config
	HTTPClient *http.Client
}

func (r OAuthRefresher) Refresh(ctx context.Context, c *models.Credential) (*oauth2.Token, error) {
	if r.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.HTTPClient)
	}
	// a token with no access token forces the source to hit the token endpoint
	return r.Config.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken}).Token()
}

// SpotifyConfig builds the OAuth client configuration for Spotify accounts.
func SpotifyConfig(c shared.OAuthClientConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       services.SpotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   services.SpotifyAuthURL,
			TokenURL:  services.SpotifyTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// YouTubeConfig builds the OAuth client configuration for Google accounts.
func YouTubeConfig(c shared.OAuthClientConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       services.YouTubeScopes,
		Endpoint:     google.Endpoint,
	}
}

// OAuthConfigs returns the OAuth configuration of both platforms.
func OAuthConfigs(c shared.CredentialsConfig) map[models.Platform]*oauth2.Config {
	return map[models.Platform]*oauth2.Config{
		models.Spotify: SpotifyConfig(c.Spotify),
		models.YouTube: YouTubeConfig(c.YouTube),
	}
}

// Refreshers wraps each config in an [OAuthRefresher] sharing client.
func Refreshers(configs map[models.Platform]*oauth2.Config, client *http.Client) map[models.Platform]Refresher {
	out := make(map[models.Platform]Refresher, len(configs))
	for p, cfg := range configs {
		out[p] = OAuthRefresher{Config: cfg, HTTPClient: client}
	}
	return out
}

// CredentialFromToken converts a token from a code exchange into a credential.
func CredentialFromToken(sessionID string, p models.Platform, tok *oauth2.Token) *models.Credential {
	c := &models.Credential{
		SessionID:    sessionID,
		Platform:     p,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		c.Scopes = strings.Fields(scope)
	}
	return c
}
