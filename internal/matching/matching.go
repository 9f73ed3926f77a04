// Package matching resolves a source track to a destination candidate.
package matching

import (
	"context"
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/shared"
)

// Searcher is the destination search call a strategy is allowed to make.
type Searcher interface {
	Search(ctx context.Context, track models.Track, limit int) ([]models.Candidate, error)
}

// Strategy picks one candidate for a track. Each call issues exactly one search and no writes.
// When nothing is found it returns a [shared.NoMatchError].
type Strategy interface {
	Match(ctx context.Context, s Searcher, t models.Track) (models.Candidate, error)
}

// New returns the strategy registered under name ("first" or "fuzzy").
func New(name string) (Strategy, error) {
	switch name {
	case "", "first":
		return FirstResult{}, nil
	case "fuzzy":
		return Fuzzy{Limit: 5}, nil
	default:
		return nil, fmt.Errorf("%w: unknown matcher %q", shared.ErrInvalidConfig, name)
	}
}

// FirstResult accepts the platform's top search hit.
type FirstResult struct{}

func (FirstResult) Match(ctx context.Context, s Searcher, t models.Track) (models.Candidate, error) {
	results, err := s.Search(ctx, t, 1)
	if err != nil {
		return models.Candidate{}, err
	}
	if len(results) == 0 {
		return models.Candidate{}, &shared.NoMatchError{Artist: t.Artist, Title: t.Title}
	}
	return results[0], nil
}

// Fuzzy fetches Limit hits and keeps the one whose folded name ranks best against the source
// title, falling back to the top hit when none match.
type Fuzzy struct {
	Limit int
}

func (f Fuzzy) Match(ctx context.Context, s Searcher, t models.Track) (models.Candidate, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 5
	}
	results, err := s.Search(ctx, t, limit)
	if err != nil {
		return models.Candidate{}, err
	}
	if len(results) == 0 {
		return models.Candidate{}, &shared.NoMatchError{Artist: t.Artist, Title: t.Title}
	}

	names := make([]string, len(results))
	for i, c := range results {
		names[i] = shared.Fold(c.Name)
	}
	ranked := fuzzy.Find(shared.Fold(t.Title), names)
	if len(ranked) == 0 {
		return results[0], nil
	}
	return results[ranked[0].Index], nil
}
