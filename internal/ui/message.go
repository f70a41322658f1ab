package ui

import (
	"github.com/desertthunder/setsmith/internal/artwork"
	"github.com/desertthunder/setsmith/internal/services"
)

// Messages produced by the model's own commands. Workflow results arrive as the
// workflow package's message types and are routed to the workflow that issued them.

type authCheckedMsg struct {
	loggedIn bool
	err      error
}

type loginDoneMsg struct {
	gateway services.Gateway
	err     error
}

type signedOutMsg struct {
	err error
}

type coverProgressMsg artwork.ProgressUpdate

type exportDoneMsg struct {
	kind string
	path string
	err  error
}
