package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
	tu "github.com/desertthunder/setsmith/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			srv := services.NewAPIService("http://example.com/", &http.Client{}, nil)

			if got := srv.URL("/x"); got != "http://example.com/x" {
				t.Errorf("expected 'http://example.com/x', got %s", got)
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := services.NewAPIService("", nil, nil)

			if got := srv.URL("/login"); got != services.DefaultBaseURL+"/login" {
				t.Errorf("expected default base url, got %s", got)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Sends Accept Header", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if got := r.Header.Get("Accept"); got != "application/json" {
					t.Errorf("expected Accept application/json, got %q", got)
				}
				w.Header().Set("X-Test", "1")
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			resp, err := services.NewAPIService(server.URL, nil, nil).Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected 2xx, got %d", resp.StatusCode)
			}
			if resp.Headers.Get("X-Test") != "1" {
				t.Error("expected response headers to be preserved")
			}
		})

		t.Run("Failed HTTP Request Is Network Error", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}
			_, err := services.NewAPIService("http://example.com", client, nil).Get(context.Background(), "/test")

			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})

		t.Run("Failed Response Body Read Is Network Error", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     make(http.Header),
				}, nil),
			}
			_, err := services.NewAPIService("http://example.com", client, nil).Get(context.Background(), "/test")

			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})

		t.Run("Timeout Is Network Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			}))
			defer server.Close()

			client := &http.Client{Timeout: 20 * time.Millisecond}
			_, err := services.NewAPIService(server.URL, client, nil).Get(context.Background(), "/slow")

			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := services.NewAPIService(server.URL, nil, nil).Get(ctx, "/test")
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})
	})

	t.Run("PostJSON", func(t *testing.T) {
		t.Run("Encodes Body And Decodes Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected Content-Type application/json, got %s", ct)
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != `{"name":"x"}` {
					t.Errorf("unexpected body %s", body)
				}
				w.Write([]byte(`{"status":"ok"}`))
			}))
			defer server.Close()

			var out struct {
				Status string `json:"status"`
			}
			err := services.NewAPIService(server.URL, nil, nil).PostJSON(context.Background(), "/x", map[string]string{"name": "x"}, &out)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if out.Status != "ok" {
				t.Errorf("expected status ok, got %q", out.Status)
			}
		})

		t.Run("Undecodable Body Is Upstream Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>oops</html>"))
			}))
			defer server.Close()

			var out map[string]any
			err := services.NewAPIService(server.URL, nil, nil).PostJSON(context.Background(), "/x", nil, &out)
			if !errors.Is(err, shared.ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})
	})

	t.Run("Status Classification", func(t *testing.T) {
		tc := []struct {
			name     string
			status   int
			location string
			want     error
		}{
			{"ok", http.StatusOK, "", nil},
			{"unauthorized", http.StatusUnauthorized, "", shared.ErrAuthRequired},
			{"forbidden", http.StatusForbidden, "", shared.ErrAuthRequired},
			{"not found", http.StatusNotFound, "", shared.ErrNotFound},
			{"server error", http.StatusInternalServerError, "", shared.ErrUpstream},
			{"bad request", http.StatusBadRequest, "", shared.ErrUpstream},
			{"redirect to login", http.StatusFound, "/login", shared.ErrAuthRequired},
			{"absolute redirect to login", http.StatusFound, "http://localhost:5001/login", shared.ErrAuthRequired},
			{"redirect elsewhere", http.StatusFound, "/", shared.ErrUpstream},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if tt.location != "" {
						w.Header().Set("Location", tt.location)
					}
					w.WriteHeader(tt.status)
				}))
				defer server.Close()

				client, err := services.NewSessionClient(server.URL, "", time.Second)
				if err != nil {
					t.Fatalf("services.NewSessionClient() error = %v", err)
				}

				resp, err := services.NewAPIService(server.URL, client, nil).Get(context.Background(), "/x")
				if err != nil {
					t.Fatalf("expected no transport error, got %v", err)
				}

				got := resp.Err()
				if tt.want == nil {
					if got != nil {
						t.Errorf("expected nil, got %v", got)
					}
					return
				}
				if !errors.Is(got, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}
	})
}

func TestNewSessionClient(t *testing.T) {
	t.Run("Attaches Session Cookie", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie("session")
			if err != nil || c.Value != "abc123" {
				t.Errorf("expected session cookie abc123, got %v (%v)", c, err)
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client, err := services.NewSessionClient(server.URL, "session=abc123; theme=dark", time.Second)
		if err != nil {
			t.Fatalf("services.NewSessionClient() error = %v", err)
		}
		if _, err := services.NewAPIService(server.URL, client, nil).Get(context.Background(), "/check-auth"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Bare Value Becomes Session Cookie", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie("session"); err != nil || c.Value != "raw" {
				t.Errorf("expected session cookie raw, got %v", r.Header.Get("Cookie"))
			}
		}))
		defer server.Close()

		client, err := services.NewSessionClient(server.URL, "raw", time.Second)
		if err != nil {
			t.Fatalf("services.NewSessionClient() error = %v", err)
		}
		services.NewAPIService(server.URL, client, nil).Get(context.Background(), "/")
	})

	t.Run("Does Not Follow Redirects", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Redirect(w, r, "/login", http.StatusFound)
		}))
		defer server.Close()

		client, _ := services.NewSessionClient(server.URL, "", time.Second)
		resp, err := services.NewAPIService(server.URL, client, nil).Get(context.Background(), "/user-playlists")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n := hits.Load(); n != 1 {
			t.Errorf("expected 1 request, got %d", n)
		}
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected 302, got %d", resp.StatusCode)
		}
	})

	t.Run("Invalid Base URL", func(t *testing.T) {
		_, err := services.NewSessionClient("://bad", "", time.Second)
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Malformed Cookie", func(t *testing.T) {
		_, err := services.NewSessionClient("http://localhost", "=;=", time.Second)
		if err == nil || !strings.Contains(err.Error(), "cookie") {
			t.Errorf("expected cookie error, got %v", err)
		}
	})
}
