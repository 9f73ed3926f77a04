package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/playlift/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, recovery and CORS.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own several routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Deps are the services behind the API routes.
type Deps struct {
	Transfers Transfers
	Sessions  Sessions
	Playlists Playlists
	Logger    *log.Logger
}

// NewRouter builds the API router with logging, recovery and CORS middleware.
func NewRouter(cfg shared.ServerConfig, deps Deps) *BasicRouter {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := NewBasicRouter()
	r.Use(Recover(logger), Logging(logger), CORS(cfg.AllowedOrigins))

	th := NewTransferHandler(deps.Transfers, logger)
	r.Handle(http.MethodPost, "/api/transfers", http.HandlerFunc(th.Submit))
	r.Handle(http.MethodGet, "/api/transfers/{id}", http.HandlerFunc(th.Status))

	if deps.Sessions != nil {
		sh := NewSessionHandler(deps.Sessions, logger)
		r.Handle(http.MethodGet, "/api/auth/check", http.HandlerFunc(sh.Check))
		r.Handle(http.MethodPost, "/api/auth/logout", http.HandlerFunc(sh.Logout))
	}

	if deps.Playlists != nil {
		ph := NewPlaylistHandler(deps.Playlists, logger)
		r.Handle(http.MethodGet, "/api/{platform}/playlists", http.HandlerFunc(ph.List))
	}

	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(Health))
	return r
}

// Serve runs an HTTP server on addr until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
