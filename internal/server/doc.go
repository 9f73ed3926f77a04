// Package server exposes the transfer pipeline over HTTP and handles OAuth callbacks.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses gorilla/mux internally, so path variables and method
// matching (405 on a known path with the wrong method) come for free.
//
// # API
//
//	POST /api/transfers        submit a transfer, 202 {"job_id": ...}
//	GET  /api/transfers/{id}   poll a job
//	GET  /api/auth/check       which platforms a session is logged in to
//	POST /api/auth/logout      forget a session's credentials
//	GET  /healthz              liveness
//
// Errors are JSON bodies of the form {"error": ..., "error_type": ...}.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback for `playlift auth login`.
// It validates the state parameter (CSRF protection), exchanges the code for tokens and sends
// the resulting credential through a channel. It only processes one callback.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
