package server

import (
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/setsmith/internal/shared"
)

// DefaultSessionCookie is the name of the backend's session cookie.
const DefaultSessionCookie = "session"

// LoginResult is what the callback captured.
type LoginResult struct {
	Cookie string // Cookie is "name=value", ready for the session_cookie config key
	Err    error
}

// LoginHandler waits for the backend's post-login redirect and captures the session cookie.
type LoginHandler struct {
	cookieName string
	results    chan LoginResult
	once       sync.Once
}

// NewLoginHandler creates a handler that looks for cookieName on the callback request.
func NewLoginHandler(cookieName string) *LoginHandler {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &LoginHandler{
		cookieName: cookieName,
		results:    make(chan LoginResult, 1),
	}
}

func (h *LoginHandler) Routes() []string {
	return []string{"GET /{$}"}
}

// Result delivers exactly one [LoginResult].
func (h *LoginHandler) Result() <-chan LoginResult {
	return h.results
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errMsg := q.Get("error"); errMsg != "" {
		h.send(LoginResult{Err: fmt.Errorf("%w: %s", shared.ErrAuthRequired, errMsg)})
		h.render(w, http.StatusBadRequest, "Login failed", errMsg)
		return
	}

	if q.Get("login") != "success" {
		h.render(w, http.StatusNotFound, "Waiting for login", "Finish signing in from the window the CLI opened.")
		return
	}

	c, err := r.Cookie(h.cookieName)
	if err != nil || c.Value == "" {
		h.send(LoginResult{Err: fmt.Errorf("%w: login succeeded but no %q cookie reached the callback", shared.ErrAuthRequired, h.cookieName)})
		h.render(w, http.StatusBadRequest, "Session not found",
			"Copy the request as cURL from your browser and run: setsmith setup session --curl-file <file>")
		return
	}

	h.send(LoginResult{Cookie: c.Name + "=" + c.Value})
	h.render(w, http.StatusOK, "Signed in", "You can close this window and return to the terminal.")
}

func (h *LoginHandler) send(res LoginResult) {
	h.once.Do(func() {
		h.results <- res
		close(h.results)
	})
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>SetSmith - {{.Title}}</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

func (h *LoginHandler) render(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTmpl.Execute(w, struct{ Title, Message string }{title, message})
}
