// API service for making HTTP requests to the SetSmith backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/shared"
)

const DefaultBaseURL = "http://localhost:5001"

// APIService performs requests against the backend and classifies failures into the
// [shared] error taxonomy.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client, logger *log.Logger) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

// NewSessionClient builds the [http.Client] used for backend calls.
//
// The session cookie is placed in a cookie jar scoped to baseURL so it rides along on
// every request. Redirects are not followed: the backend answers a missing session with a
// redirect to /login, which has to surface as a response rather than an HTML page.
func NewSessionClient(baseURL, cookie string, timeout time.Duration) (*http.Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid backend url: %v", shared.ErrInvalidConfig, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if !shared.IsBlank(cookie) {
		if !strings.Contains(cookie, "=") {
			cookie = "session=" + strings.TrimSpace(cookie)
		}
		cookies, err := shared.ParseCookies(cookie)
		if err != nil {
			return nil, err
		}
		jar.SetCookies(u, cookies)
	}

	return &http.Client{
		Timeout: timeout,
		Jar:     jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Err maps a non-2xx response onto the error taxonomy. It returns nil for 2xx.
func (r *APIResponse) Err() error {
	switch {
	case r.OK():
		return nil
	case r.StatusCode == http.StatusUnauthorized, r.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuthRequired, r.StatusCode)
	case r.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", shared.ErrNotFound, r.StatusCode)
	case r.StatusCode >= 300 && r.StatusCode < 400:
		if isLoginRedirect(r.Headers.Get("Location")) {
			return fmt.Errorf("%w: redirected to login", shared.ErrAuthRequired)
		}
		return fmt.Errorf("%w: unexpected redirect (status %d)", shared.ErrUpstream, r.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", shared.ErrUpstream, r.StatusCode)
	}
}

func isLoginRedirect(location string) bool {
	if location == "" {
		return false
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return strings.TrimRight(u.Path, "/") == "/login"
}

// URL joins path onto the base URL.
func (a *APIService) URL(path string) string {
	return a.baseURL + path
}

// Get performs a GET request to the specified path and returns the raw response.
//
// Only transport failures are returned as errors; see [APIResponse.Err] for statuses.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.do(req)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

// GetJSON performs a GET and decodes a 2xx JSON body into out.
func (a *APIService) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := a.Get(ctx, path)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// PostJSON encodes in, performs a POST and decodes a 2xx JSON body into out.
func (a *APIService) PostJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := a.Post(ctx, path, data)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (a *APIService) do(req *http.Request) (*APIResponse, error) {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Debug("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(fmt.Errorf("failed to read response: %w", err))
	}

	a.logger.Debug("request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

func networkError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%w: %w: %w", shared.ErrNetwork, shared.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", shared.ErrNetwork, err)
}

func decode(resp *APIResponse, out any) error {
	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrUpstream, err)
	}
	return nil
}
