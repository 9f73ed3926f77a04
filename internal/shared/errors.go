package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found or is private")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Job errors
	ErrTerminalState = fmt.Errorf("job already finished")
	ErrStaleProgress = fmt.Errorf("progress update goes backwards")
	ErrQueueFull     = fmt.Errorf("%w: transfer queue is full", ErrServiceUnavailable)
)

// Kind names an error category reported to callers as error_type.
type Kind string

const (
	KindAuth       Kind = "AuthError"
	KindNotFound   Kind = "NotFoundOrPrivate"
	KindNoMatch    Kind = "NoMatchFound"
	KindUpstream   Kind = "UpstreamError"
	KindValidation Kind = "ValidationError"
	KindInternal   Kind = "InternalError"
)

// UpstreamError is a non-success response (or a transport failure, Status 0) from a platform API.
type UpstreamError struct {
	Platform string
	Status   int
	Body     string
	Err      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Platform, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s API error (%d): %s", e.Platform, e.Status, e.Body)
	default:
		return fmt.Sprintf("%s API error (%d)", e.Platform, e.Status)
	}
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrAPIRequest, e.Err}
	}
	return []error{ErrAPIRequest}
}

// NoMatchError reports that a destination search returned nothing for a track.
type NoMatchError struct {
	Artist string
	Title  string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("No results found for '%s - %s'", e.Artist, e.Title)
}

func (e *NoMatchError) Unwrap() error { return ErrTrackNotFound }

// KindOf classifies err into the error taxonomy. Unknown errors are [KindInternal].
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	switch {
	case isAny(err, ErrAuthFailed, ErrNotAuthenticated, ErrRefreshFailed,
		ErrNoRefreshToken, ErrMissingCredentials, ErrInvalidCredentials):
		return KindAuth
	case errors.Is(err, ErrPlaylistNotFound):
		return KindNotFound
	case errors.Is(err, ErrTrackNotFound):
		return KindNoMatch
	case isAny(err, ErrInvalidInput, ErrMissingArgument, ErrInvalidArgument, ErrInvalidFlag):
		return KindValidation
	case isAny(err, ErrAPIRequest, ErrTimeout, ErrServiceUnavailable, context.DeadlineExceeded):
		return KindUpstream
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindUpstream
	}
	return KindInternal
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
