package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/shared"
)

func TestBasicRouter(t *testing.T) {
	t.Run("middleware runs in order added", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order: %s", got)
		}
	})

	t.Run("wrong method is rejected", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.NotFoundHandler())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("request logger records status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(RequestLogger(logger))
		router.Handle(http.MethodGet, "/teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
		if out := buf.String(); !strings.Contains(out, "418") || !strings.Contains(out, "/teapot") {
			t.Errorf("expected status and path in log, got %q", out)
		}
	})
}

func serveLogin(h *LoginHandler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	router := NewBasicRouter()
	router.Handler(h)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginHandler(t *testing.T) {
	t.Run("captures session cookie", func(t *testing.T) {
		h := NewLoginHandler("")
		rec := serveLogin(h, "/?login=success", &http.Cookie{Name: "session", Value: "abc.def"})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Signed in") {
			t.Errorf("expected success page, got %q", rec.Body.String())
		}

		res := <-h.Result()
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Cookie != "session=abc.def" {
			t.Errorf("unexpected cookie: %q", res.Cookie)
		}
	})

	t.Run("missing cookie reports auth error", func(t *testing.T) {
		h := NewLoginHandler("session")
		rec := serveLogin(h, "/?login=success")

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		res := <-h.Result()
		if !errors.Is(res.Err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", res.Err)
		}
	})

	t.Run("error param reports failure", func(t *testing.T) {
		h := NewLoginHandler("session")
		serveLogin(h, "/?error=access_denied")

		res := <-h.Result()
		if res.Err == nil || !strings.Contains(res.Err.Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", res.Err)
		}
	})

	t.Run("unrelated request keeps waiting", func(t *testing.T) {
		h := NewLoginHandler("session")
		rec := serveLogin(h, "/")

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		select {
		case res := <-h.Result():
			t.Errorf("expected no result, got %+v", res)
		default:
		}
	})

	t.Run("only first result is delivered", func(t *testing.T) {
		h := NewLoginHandler("session")
		serveLogin(h, "/?login=success", &http.Cookie{Name: "session", Value: "one"})
		serveLogin(h, "/?login=success", &http.Cookie{Name: "session", Value: "two"})

		var got []LoginResult
		for res := range h.Result() {
			got = append(got, res)
		}
		if len(got) != 1 || got[0].Cookie != "session=one" {
			t.Errorf("expected single first result, got %+v", got)
		}
	})

	t.Run("escapes messages", func(t *testing.T) {
		h := NewLoginHandler("session")
		rec := serveLogin(h, "/?error=<script>")
		if strings.Contains(rec.Body.String(), "<script>") {
			t.Error("expected error text to be escaped")
		}
	})
}

func TestListen(t *testing.T) {
	h := NewLoginHandler("session")
	router := NewBasicRouter()
	router.Handler(h)

	l, err := Listen("127.0.0.1:0", router)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Shutdown()

	req, _ := http.NewRequest(http.MethodGet, "http://"+l.Addr()+"/?login=success", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "live"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if res := <-h.Result(); res.Cookie != "session=live" {
		t.Errorf("unexpected result: %+v", res)
	}
}
