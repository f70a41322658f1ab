package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
	_ "golang.org/x/image/webp"
)

// Source fetches raw cover bytes and their content type.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context, url string) ([]byte, string, error)

func (f SourceFunc) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	return f(ctx, url)
}

// HTTPSource downloads covers over HTTP.
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource creates an HTTP cover source. A nil client gets a 30 second timeout.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{client: client}
}

func (s *HTTPSource) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("%w: empty cover url", shared.ErrInvalidArgument)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to download cover: %w", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: failed to download cover: status %d", shared.ErrUpstream, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read cover data: %w", shared.ErrNetwork, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// CoverStore is the part of the cover repository a [CachedSource] needs.
type CoverStore interface {
	GetByURL(url string) (*models.CachedCover, error)
	Create(cover *models.CachedCover) error
	RecordHit(id string) error
}

// CachedSource serves covers from a [CoverStore] and fills it from next on a miss.
//
// Only bytes that decode as an image are stored, so a bad upstream response is fetched
// again next time. Store failures are logged and never fail the fetch.
type CachedSource struct {
	store  CoverStore
	next   Source
	logger *log.Logger
}

func NewCachedSource(store CoverStore, next Source, logger *log.Logger) *CachedSource {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CachedSource{store: store, next: next, logger: logger}
}

func (s *CachedSource) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	cached, err := s.store.GetByURL(url)
	switch {
	case err == nil:
		if err := s.store.RecordHit(cached.ID()); err != nil {
			s.logger.Warn("failed to record cover hit", "url", url, "error", err)
		}
		s.logger.Debug("cover cache hit", "url", url)
		return cached.Data(), cached.ContentType(), nil
	case !errors.Is(err, shared.ErrNotFound):
		s.logger.Warn("cover cache lookup failed", "url", url, "error", err)
	}

	data, contentType, err := s.next.Fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		s.logger.Warn("not caching undecodable cover", "url", url, "error", err)
		return data, contentType, nil
	}
	if err := s.store.Create(models.NewCachedCover(url, contentType, data)); err != nil {
		s.logger.Warn("failed to cache cover", "url", url, "error", err)
	}
	return data, contentType, nil
}

// Decode decodes JPEG, PNG, GIF or WebP cover bytes.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty cover data", shared.ErrUpstream)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode cover: %w", shared.ErrUpstream, err)
	}
	return img, nil
}
