package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "refresh failure", err: fmt.Errorf("%w: spotify", ErrRefreshFailed), want: KindAuth},
		{name: "missing credential", err: fmt.Errorf("%w: youtube", ErrNotAuthenticated), want: KindAuth},
		{name: "private playlist", err: fmt.Errorf("%w: abc", ErrPlaylistNotFound), want: KindNotFound},
		{name: "no match", err: &NoMatchError{Artist: "A", Title: "T"}, want: KindNoMatch},
		{name: "validation", err: fmt.Errorf("%w: missing source", ErrInvalidInput), want: KindValidation},
		{name: "bad flag value", err: fmt.Errorf("%w: unknown format \"xml\"", ErrInvalidFlag), want: KindValidation},
		{name: "upstream", err: &UpstreamError{Platform: "spotify", Status: 500, Body: "boom"}, want: KindUpstream},
		{name: "deadline", err: fmt.Errorf("search: %w", context.DeadlineExceeded), want: KindUpstream},
		{name: "unknown", err: errors.New("disk on fire"), want: KindInternal},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Run("NoMatchError", func(t *testing.T) {
		err := &NoMatchError{Artist: "NoSuchArtist", Title: "Nothing"}
		if got := err.Error(); got != "No results found for 'NoSuchArtist - Nothing'" {
			t.Errorf("unexpected message %q", got)
		}
		if !errors.Is(err, ErrTrackNotFound) {
			t.Error("NoMatchError should match ErrTrackNotFound")
		}
	})

	t.Run("UpstreamError", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := &UpstreamError{Platform: "youtube", Err: cause}
		if !errors.Is(err, ErrAPIRequest) || !errors.Is(err, cause) {
			t.Error("UpstreamError should unwrap to ErrAPIRequest and its cause")
		}

		err = &UpstreamError{Platform: "spotify", Status: 502, Body: "bad gateway"}
		if got := err.Error(); got != "spotify API error (502): bad gateway" {
			t.Errorf("unexpected message %q", got)
		}
	})
}
