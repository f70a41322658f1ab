// Package server runs the short-lived local HTTP listener used by the login flow.
//
// # Login callback
//
// The backend finishes its OAuth exchange by redirecting the browser to
// http://localhost:3000?login=success. [LoginHandler] answers that request. Cookies are
// scoped to a host and not a port, so the browser sends the backend's session cookie along
// with the redirect; the handler captures it and reports it once through [LoginHandler.Result].
//
// # Router
//
// [BasicRouter] registers [Handler] implementations on an [http.ServeMux] using method
// patterns and wraps them in [Middleware], applied so the first one added runs first.
// [RequestLogger] logs every request at debug level.
package server
