package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
	tu "github.com/desertthunder/playlift/internal/testing"
)

func TestNew(t *testing.T) {
	for _, name := range []string{"", "first", "fuzzy"} {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}
	if _, err := New("duration"); !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestFirstResult(t *testing.T) {
	viva := models.Track{Artist: "Coldplay", Title: "Viva la Vida"}
	missing := models.Track{Artist: "NoSuchArtist", Title: "NoSuchSong"}

	svc := tu.NewFakeService(models.Spotify)
	svc.Matches[viva.String()] = []models.Candidate{
		{ID: "sp1", Name: "Viva la Vida", Artist: "Coldplay"},
		{ID: "sp2", Name: "Viva la Vida - Live", Artist: "Coldplay"},
	}

	t.Run("takes the first hit", func(t *testing.T) {
		c, err := FirstResult{}.Match(context.Background(), svc, viva)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ID != "sp1" {
			t.Errorf("expected sp1, got %s", c.ID)
		}
	})

	t.Run("reports no match", func(t *testing.T) {
		_, err := FirstResult{}.Match(context.Background(), svc, missing)
		if err == nil || err.Error() != "No results found for 'NoSuchArtist - NoSuchSong'" {
			t.Errorf("unexpected error %v", err)
		}
		if shared.KindOf(err) != shared.KindNoMatch {
			t.Errorf("expected NoMatchFound kind, got %s", shared.KindOf(err))
		}
	})

	t.Run("one search per match", func(t *testing.T) {
		fresh := tu.NewFakeService(models.Spotify)
		FirstResult{}.Match(context.Background(), fresh, viva)
		if n := len(fresh.Searches()); n != 1 {
			t.Errorf("expected 1 search, got %d", n)
		}
		if len(fresh.Written()) != 0 {
			t.Error("matching must not write")
		}
	})

	t.Run("propagates search errors", func(t *testing.T) {
		failing := tu.NewFakeService(models.Spotify)
		boom := &shared.UpstreamError{Platform: "spotify", Status: 500}
		failing.SearchErrs[viva.String()] = boom

		_, err := FirstResult{}.Match(context.Background(), failing, viva)
		if !errors.Is(err, boom) {
			t.Errorf("expected upstream error, got %v", err)
		}
	})
}

func TestFuzzy(t *testing.T) {
	track := models.Track{Artist: "Beyoncé", Title: "Halo"}
	svc := tu.NewFakeService(models.YouTube)
	svc.Matches[track.String()] = []models.Candidate{
		{ID: "v1", Name: "Crazy in Love"},
		{ID: "v2", Name: "HALO (Live)"},
	}

	t.Run("prefers the closest name", func(t *testing.T) {
		c, err := Fuzzy{Limit: 5}.Match(context.Background(), svc, track)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ID != "v2" {
			t.Errorf("expected v2, got %s", c.ID)
		}
	})

	t.Run("falls back to first hit", func(t *testing.T) {
		other := models.Track{Artist: "X", Title: "zzzz"}
		svc.Matches[other.String()] = []models.Candidate{{ID: "a", Name: "abc"}, {ID: "b", Name: "def"}}

		c, err := Fuzzy{}.Match(context.Background(), svc, other)
		if err != nil || c.ID != "a" {
			t.Errorf("expected fallback to a, got %+v, %v", c, err)
		}
	})

	t.Run("no results", func(t *testing.T) {
		_, err := Fuzzy{}.Match(context.Background(), svc, models.Track{Artist: "N", Title: "M"})
		var nm *shared.NoMatchError
		if !errors.As(err, &nm) {
			t.Errorf("expected NoMatchError, got %v", err)
		}
	})
}
