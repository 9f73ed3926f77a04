package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/playlift/internal/auth"
	"github.com/desertthunder/playlift/internal/formatter"
	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/server"
	"github.com/desertthunder/playlift/internal/shared"
)

// AuthLogin performs the OAuth2 authorization code flow for one platform.
//
// Starts a local HTTP server on the redirect URI, opens the browser for user consent, and stores the
// exchanged tokens under the session. A new session id is generated when none is given.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	p, err := models.ParsePlatform(cmd.StringArg("platform"))
	if err != nil {
		return err
	}

	config := auth.OAuthConfigs(r.config.Credentials)[p]
	if config.ClientID == "" || config.ClientSecret == "" {
		return fmt.Errorf("%w: %s client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials, p.Title())
	}

	session := cmd.String("session")
	if session == "" {
		session = shared.GenerateID()
		r.writePlain("→ New session %s\n", session)
	}

	cred, err := r.doOAuth(ctx, config, session, p, cmd.Duration("timeout"), !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	_, manager := r.credentialManager(db)
	if err := manager.Put(ctx, cred); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	r.logger.Info("credentials stored", "platform", p, "session", session)
	r.writePlainln("✓ %s connected", p.Title())
	r.writePlain("Use --session %s (or PLAYLIFT_SESSION) with transfer commands.\n", session)
	return nil
}

// AuthLogout deletes every stored credential of the session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	session := cmd.String("session")
	if session == "" {
		return fmt.Errorf("%w: --session is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	_, manager := r.credentialManager(db)
	if err := manager.Logout(ctx, session); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out session %s\n", session)
}

// AuthStatus lists the platforms a session is connected to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session := cmd.String("session")
	if session == "" {
		return fmt.Errorf("%w: --session is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo, _ := r.credentialManager(db)
	creds, err := repo.List(ctx, session)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type entry struct {
			Platform    models.Platform `json:"platform"`
			ExpiresAt   time.Time       `json:"expires_at,omitzero"`
			Expired     bool            `json:"expired"`
			Refreshable bool            `json:"refreshable"`
		}
		out := make([]entry, 0, len(creds))
		for _, c := range creds {
			out = append(out, entry{c.Platform, c.ExpiresAt, c.Expired(r.now()), c.CanRefresh()})
		}
		return r.writeJSON(out, true)
	}

	if len(creds) == 0 {
		return r.writePlain("✗ Session %s has no stored credentials\n", session)
	}
	return r.writePlain("%s\n", formatter.CredentialTable(creds, r.now()))
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server listening on the
// host and port of the configured redirect URI.
func (r *Runner) doOAuth(ctx context.Context, config *oauth2.Config, session string, p models.Platform, timeout time.Duration, openBrowser bool) (*models.Credential, error) {
	redirect, err := url.Parse(config.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: bad redirect_uri %q", shared.ErrInvalidConfig, config.RedirectURL)
	}

	oauthHandler := server.NewOAuthHandler(config, shared.GenerateID(), session, p)
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger))
	router.Handler(oauthHandler)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Debug("starting OAuth callback server", "addr", redirect.Host, "platform", p)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := oauthHandler.AuthCodeURL()
	if openBrowser {
		r.writePlain("→ Opening browser for %s authorization...\n", p.Title())
		if err := shared.OpenBrowser(ctx, authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			openBrowser = false
		}
	}
	if !openBrowser {
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := result.Error(); err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if result.Credential == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Credential, nil
}
