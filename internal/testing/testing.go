// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"iter"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/playlift/internal/models"
)

// Written records one call to [FakeService.Write].
type Written struct {
	Candidate models.Candidate
	Target    models.PlaylistRef
}

// FakeService is an in-memory test double for services.Service.
//
// Playlists maps playlist ids to their tracks, Matches maps [models.Track.String] keys to
// search results, and SearchErrs/WriteErrs inject failures keyed the same way (writes by
// candidate id). Owned is what ListPlaylists returns.
type FakeService struct {
	P            models.Platform
	Playlists    map[string][]models.Track
	ListErr      error
	Owned        []models.Playlist
	PlaylistsErr error
	Matches      map[string][]models.Candidate
	SearchErrs   map[string]error
	WriteErrs    map[string]error
	// BeforeSearch runs before each search, e.g. to observe job state mid-transfer.
	BeforeSearch func(models.Track)

	mu       sync.Mutex
	written  []Written
	searches []string
}

// NewFakeService returns an empty fake for platform p.
func NewFakeService(p models.Platform) *FakeService {
	return &FakeService{
		P:          p,
		Playlists:  map[string][]models.Track{},
		Matches:    map[string][]models.Candidate{},
		SearchErrs: map[string]error{},
		WriteErrs:  map[string]error{},
	}
}

func (f *FakeService) Platform() models.Platform { return f.P }

func (f *FakeService) ListTracks(ctx context.Context, ref models.PlaylistRef) iter.Seq2[models.Track, error] {
	return func(yield func(models.Track, error) bool) {
		if f.ListErr != nil {
			yield(models.Track{}, f.ListErr)
			return
		}
		for _, t := range f.Playlists[ref.ID] {
			if !yield(t, nil) {
				return
			}
		}
	}
}

func (f *FakeService) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if f.PlaylistsErr != nil {
		return nil, f.PlaylistsErr
	}
	return append([]models.Playlist(nil), f.Owned...), nil
}

func (f *FakeService) Search(ctx context.Context, t models.Track, limit int) ([]models.Candidate, error) {
	if f.BeforeSearch != nil {
		f.BeforeSearch(t)
	}
	f.mu.Lock()
	f.searches = append(f.searches, t.String())
	f.mu.Unlock()

	if err := f.SearchErrs[t.String()]; err != nil {
		return nil, err
	}
	res := f.Matches[t.String()]
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (f *FakeService) Write(ctx context.Context, c models.Candidate, target models.PlaylistRef) error {
	if err := f.WriteErrs[c.ID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, Written{Candidate: c, Target: target})
	return nil
}

// Written returns a copy of every successful write.
func (f *FakeService) Written() []Written {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Written(nil), f.written...)
}

// Searches returns the "Artist - Title" keys searched for, in order.
func (f *FakeService) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
