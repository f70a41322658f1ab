// package testing contains shared testing utilities
package testing

import (
	"cmp"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/services"
)

// FakeGateway is a scripted [services.Gateway] that records the calls it receives.
type FakeGateway struct {
	mu sync.Mutex

	LoggedIn        bool
	Playlists       []models.PlaylistRef
	Genres          map[string][]string
	Result          *services.SetResult
	FavoritesStatus string

	// Err is returned by every call when set; the narrower errors apply to one call each.
	Err          error
	PlaylistsErr error
	GenresErr    error
	SetErr       error

	calls         map[string]int
	LastSet       *models.SetRequest
	LastFavorites *models.FavoritesRequest
}

var _ services.Gateway = (*FakeGateway)(nil)

func (f *FakeGateway) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (f *FakeGateway) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *FakeGateway) LoginURL() string { return "http://localhost:5001/login" }

func (f *FakeGateway) CheckAuth(ctx context.Context) (bool, error) {
	f.record("CheckAuth")
	return f.LoggedIn, f.Err
}

func (f *FakeGateway) SignOut(ctx context.Context) error {
	f.record("SignOut")
	return f.Err
}

func (f *FakeGateway) ListUserPlaylists(ctx context.Context) ([]models.PlaylistRef, error) {
	f.record("ListUserPlaylists")
	if err := cmp.Or(f.Err, f.PlaylistsErr); err != nil {
		return nil, err
	}
	return f.Playlists, nil
}

func (f *FakeGateway) ListGenresForPlaylist(ctx context.Context, playlistID string) (models.GenreSet, error) {
	f.record("ListGenresForPlaylist")
	if err := cmp.Or(f.Err, f.GenresErr); err != nil {
		return nil, err
	}
	return models.NewGenreSet(f.Genres[playlistID]), nil
}

func (f *FakeGateway) CreateSet(ctx context.Context, req models.SetRequest) (*services.SetResult, error) {
	f.record("CreateSet")
	f.mu.Lock()
	f.LastSet = &req
	f.mu.Unlock()

	if err := cmp.Or(f.Err, f.SetErr); err != nil {
		return nil, err
	}
	if f.Result == nil {
		return &services.SetResult{Status: "ok", Tracks: models.TrackList{}}, nil
	}
	return f.Result, nil
}

func (f *FakeGateway) CreateFavoritesSet(ctx context.Context, req models.FavoritesRequest) (string, error) {
	f.record("CreateFavoritesSet")
	f.mu.Lock()
	f.LastFavorites = &req
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	return f.FavoritesStatus, nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

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

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
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
