package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func tracksWith(urls ...string) models.TrackList {
	tracks := make(models.TrackList, len(urls))
	for i, u := range urls {
		tracks[i] = models.Track{Artist: "A", Name: "N", Timestamp: "0:00", AlbumCoverURL: u}
	}
	return tracks
}

func waitAll(t *testing.T, b *Board) {
	t.Helper()
	for _, c := range b.Covers() {
		select {
		case <-c.Done():
		case <-time.After(2 * time.Second):
			t.Fatalf("cover %s never completed", c.URL)
		}
	}
}

func TestCover(t *testing.T) {
	t.Run("Completes Once", func(t *testing.T) {
		c := NewCover("u")
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))

		if !c.Complete(img, nil) {
			t.Fatal("expected first Complete to win")
		}
		if c.Complete(nil, errors.New("late")) {
			t.Error("expected second Complete to be ignored")
		}
		if c.State() != Loaded || c.Image() == nil || c.Err() != nil {
			t.Errorf("unexpected cover state %v, %v", c.State(), c.Err())
		}

		select {
		case <-c.Done():
		default:
			t.Error("expected Done to be closed")
		}
	})

	t.Run("Error Completes As Failed", func(t *testing.T) {
		c := NewCover("u")
		c.Complete(nil, errors.New("boom"))
		if c.State() != Failed || c.Image() != nil || c.Err() == nil {
			t.Errorf("expected failed cover, got %v", c.State())
		}
	})

	t.Run("OnComplete", func(t *testing.T) {
		c := NewCover("u")
		var fired atomic.Int32
		if !c.OnComplete(func() { fired.Add(1) }) {
			t.Fatal("expected registration on pending cover")
		}
		c.Complete(nil, errors.New("x"))
		c.Complete(nil, errors.New("y"))
		if fired.Load() != 1 {
			t.Errorf("expected callback once, got %d", fired.Load())
		}
		if c.OnComplete(func() {}) {
			t.Error("expected no registration on complete cover")
		}
	})
}

func TestBarrier(t *testing.T) {
	t.Run("Nothing Pending Does Not Suspend", func(t *testing.T) {
		a, b := NewCover("a"), NewCover("b")
		a.Complete(image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
		b.Complete(nil, errors.New("failed"))

		barrier := NewBarrier()
		barrier.Add(a)
		barrier.Add(b)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := barrier.Wait(ctx); err != nil {
			t.Errorf("expected immediate return, got %v", err)
		}
		if barrier.Pending() != 0 {
			t.Errorf("expected 0 pending, got %d", barrier.Pending())
		}
	})

	t.Run("Waits For Every Pending Cover", func(t *testing.T) {
		covers := []*Cover{NewCover("a"), NewCover("b"), NewCover("c")}
		barrier := NewBarrier()
		for _, c := range covers {
			barrier.Add(c)
		}
		if barrier.Pending() != 3 {
			t.Fatalf("expected 3 pending, got %d", barrier.Pending())
		}

		done := make(chan error, 1)
		go func() { done <- barrier.Wait(context.Background()) }()

		covers[0].Complete(nil, errors.New("x"))
		covers[1].Complete(image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)

		select {
		case <-done:
			t.Fatal("barrier released before the last cover completed")
		case <-time.After(20 * time.Millisecond):
		}

		covers[2].Complete(nil, errors.New("z"))
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Wait() error = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("barrier never released")
		}

		for _, c := range covers {
			if c.State() == Pending {
				t.Errorf("cover %s still pending after release", c.URL)
			}
		}
	})

	t.Run("Context Bounds The Wait", func(t *testing.T) {
		barrier := NewBarrier()
		barrier.Add(NewCover("never"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if err := barrier.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("Nil Cover Is Ignored", func(t *testing.T) {
		barrier := NewBarrier()
		barrier.Add(nil)
		if err := barrier.Wait(context.Background()); err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	})
}

func TestBoard(t *testing.T) {
	t.Run("Loads Distinct URLs", func(t *testing.T) {
		data := pngBytes(t, color.White)
		var calls atomic.Int32
		src := SourceFunc(func(ctx context.Context, url string) ([]byte, string, error) {
			calls.Add(1)
			return data, "image/png", nil
		})

		b := NewBoard(context.Background(), tracksWith("a", "b", "a"), src, Options{RateLimit: 1000})
		defer b.Close()
		waitAll(t, b)

		if len(b.Covers()) != 2 {
			t.Fatalf("expected 2 covers, got %d", len(b.Covers()))
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 fetches, got %d", calls.Load())
		}
		for _, c := range b.Covers() {
			if c.State() != Loaded {
				t.Errorf("cover %s: state %v, err %v", c.URL, c.State(), c.Err())
			}
		}
		if b.Cover("missing") != nil {
			t.Error("expected nil for unknown url")
		}
	})

	t.Run("Fetch And Decode Errors Fail The Cover", func(t *testing.T) {
		src := SourceFunc(func(ctx context.Context, url string) ([]byte, string, error) {
			if url == "bad-fetch" {
				return nil, "", errors.New("fetch failed")
			}
			return []byte("not an image"), "image/jpeg", nil
		})

		b := NewBoard(context.Background(), tracksWith("bad-fetch", "bad-decode"), src, Options{RateLimit: 1000})
		defer b.Close()
		waitAll(t, b)

		for _, c := range b.Covers() {
			if c.State() != Failed {
				t.Errorf("cover %s: expected failed, got %v", c.URL, c.State())
			}
		}
	})

	t.Run("Timeout Fails A Hung Cover", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		src := SourceFunc(func(ctx context.Context, url string) ([]byte, string, error) {
			<-release
			return nil, "", errors.New("too late")
		})

		b := NewBoard(context.Background(), tracksWith("hung"), src, Options{Timeout: 20 * time.Millisecond, RateLimit: 1000})
		waitAll(t, b)

		c := b.Cover("hung")
		if c.State() != Failed || !errors.Is(c.Err(), shared.ErrTimeout) {
			t.Errorf("expected timeout failure, got %v, %v", c.State(), c.Err())
		}
	})

	t.Run("Close Fails Pending Covers", func(t *testing.T) {
		started := make(chan struct{}, 1)
		src := SourceFunc(func(ctx context.Context, url string) ([]byte, string, error) {
			started <- struct{}{}
			<-ctx.Done()
			return nil, "", ctx.Err()
		})

		b := NewBoard(context.Background(), tracksWith("slow"), src, Options{Timeout: time.Minute, RateLimit: 1000})
		<-started
		b.Close()

		if c := b.Cover("slow"); c.State() != Failed {
			t.Errorf("expected failed after Close, got %v", c.State())
		}
	})

	t.Run("Progress Updates", func(t *testing.T) {
		data := pngBytes(t, color.Black)
		src := SourceFunc(func(ctx context.Context, url string) ([]byte, string, error) {
			return data, "image/png", nil
		})
		progress := make(chan ProgressUpdate, 10)

		b := NewBoard(context.Background(), tracksWith("a", "b", "c"), src, Options{RateLimit: 1000, Progress: progress})
		waitAll(t, b)
		b.Close()

		close(progress)
		var steps []int
		for u := range progress {
			if u.Total != 3 {
				t.Errorf("expected total 3, got %d", u.Total)
			}
			steps = append(steps, u.Step)
		}
		if len(steps) != 3 {
			t.Errorf("expected 3 updates, got %v", steps)
		}
	})

	t.Run("Empty Track List", func(t *testing.T) {
		b := NewBoard(context.Background(), nil, SourceFunc(nil), Options{})
		defer b.Close()
		if len(b.Covers()) != 0 {
			t.Errorf("expected no covers, got %d", len(b.Covers()))
		}
	})
}

type memoryStore struct {
	mu     sync.Mutex
	covers map[string]*models.CachedCover
	hits   int
}

func (m *memoryStore) GetByURL(url string) (*models.CachedCover, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.covers[url]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memoryStore) Create(c *models.CachedCover) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.SetID(c.URL())
	m.covers[c.URL()] = c
	return nil
}

func (m *memoryStore) RecordHit(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
	return nil
}

func TestSources(t *testing.T) {
	t.Run("HTTPSource", func(t *testing.T) {
		data := pngBytes(t, color.White)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/missing" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Write(data)
		}))
		defer server.Close()

		src := NewHTTPSource(nil)

		got, ct, err := src.Fetch(context.Background(), server.URL+"/cover.png")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if ct != "image/png" || !bytes.Equal(got, data) {
			t.Errorf("unexpected content type %q or data", ct)
		}

		if _, _, err := src.Fetch(context.Background(), server.URL+"/missing"); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
		if _, _, err := src.Fetch(context.Background(), ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("CachedSource", func(t *testing.T) {
		data := pngBytes(t, color.White)
		var calls atomic.Int32
		next := SourceFunc(func(ctx context.Context, url string) ([]byte, string, error) {
			calls.Add(1)
			return data, "image/png", nil
		})
		store := &memoryStore{covers: map[string]*models.CachedCover{}}
		src := NewCachedSource(store, next, nil)

		for range 3 {
			got, _, err := src.Fetch(context.Background(), "https://img/1")
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Error("unexpected data")
			}
		}

		if calls.Load() != 1 {
			t.Errorf("expected 1 upstream fetch, got %d", calls.Load())
		}
		if store.hits != 2 {
			t.Errorf("expected 2 cache hits, got %d", store.hits)
		}
	})

	t.Run("CachedSource Skips Undecodable Bytes", func(t *testing.T) {
		data := pngBytes(t, color.White)
		var calls atomic.Int32
		next := SourceFunc(func(ctx context.Context, url string) ([]byte, string, error) {
			if calls.Add(1) == 1 {
				return []byte("<html>upstream error</html>"), "text/html", nil
			}
			return data, "image/png", nil
		})
		store := &memoryStore{covers: map[string]*models.CachedCover{}}
		src := NewCachedSource(store, next, nil)
		tracks := tracksWith("https://img/1")

		first := NewBoard(context.Background(), tracks, src, Options{})
		defer first.Close()
		waitAll(t, first)
		if first.Covers()[0].Err() == nil {
			t.Fatal("expected the html response to fail the cover")
		}
		if len(store.covers) != 0 {
			t.Fatalf("expected nothing cached, got %d covers", len(store.covers))
		}

		second := NewBoard(context.Background(), tracks, src, Options{})
		defer second.Close()
		waitAll(t, second)
		if err := second.Covers()[0].Err(); err != nil {
			t.Errorf("expected the retry to load, got %v", err)
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 upstream fetches, got %d", calls.Load())
		}
		if len(store.covers) != 1 {
			t.Errorf("expected the decoded cover to be cached, got %d", len(store.covers))
		}
	})

	t.Run("Decode", func(t *testing.T) {
		img, err := Decode(pngBytes(t, color.Black))
		if err != nil || img.Bounds().Dx() != 4 {
			t.Errorf("Decode() = %v, %v", img, err)
		}
		if _, err := Decode(nil); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream for empty data, got %v", err)
		}
	})
}
