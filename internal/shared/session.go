package shared

import "sync/atomic"

// Session is the one piece of ambient state: whether the backend session is valid.
//
// Set with [Session.Start] once the app has asked the backend (/check-auth), cleared with
// [Session.End] on sign-out and with [Session.Invalidate] when any call comes back
// unauthenticated. The zero value is an invalid session.
type Session struct {
	valid   atomic.Bool
	expired atomic.Bool
}

// NewSession returns a session cell in the given state.
func NewSession(valid bool) *Session {
	s := &Session{}
	s.Start(valid)
	return s
}

// Start initializes the cell from the backend's login state.
func (s *Session) Start(valid bool) {
	s.valid.Store(valid)
	s.expired.Store(false)
}

// Valid reports whether the session is believed to be valid.
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	return s.valid.Load()
}

// Expired reports whether the session was invalidated by a failed call rather than a sign-out.
func (s *Session) Expired() bool {
	if s == nil {
		return false
	}
	return s.expired.Load()
}

// Invalidate marks the session as expired after an authentication failure.
func (s *Session) Invalidate() {
	if s == nil {
		return
	}
	s.valid.Store(false)
	s.expired.Store(true)
}

// End clears the session on sign-out.
func (s *Session) End() {
	if s == nil {
		return
	}
	s.valid.Store(false)
	s.expired.Store(false)
}
