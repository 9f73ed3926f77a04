package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// op distinguishes reads of a user's source playlist from other calls; a 403 on a source
// read means the playlist is private.
type op int

const (
	opRead op = iota
	opSearch
	opWrite
	opList
)

// classify maps a platform response status onto the error taxonomy.
func classify(p models.Platform, o op, status int, body string) error {
	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s rejected the access token: %s", shared.ErrNotAuthenticated, p.Title(), body)
	case status == http.StatusNotFound && o == opRead:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, body)
	case status == http.StatusForbidden && o == opRead:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, body)
	default:
		return &shared.UpstreamError{Platform: string(p), Status: status, Body: body}
	}
}

// transportError wraps failures that never produced a response.
func transportError(p models.Platform, err error) error {
	if shared.KindOf(err) == shared.KindAuth {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &shared.UpstreamError{Platform: string(p), Err: fmt.Errorf("%w: %v", shared.ErrTimeout, err)}
	}
	return &shared.UpstreamError{Platform: string(p), Err: err}
}
