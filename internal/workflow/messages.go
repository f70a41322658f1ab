package workflow

import (
	"errors"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
)

var workflowIDs atomic.Uint64

// nextID hands out a process-wide unique workflow id. Messages carry the id of the
// workflow that issued them so a closed screen's late responses never reach its successor.
func nextID() uint64 { return workflowIDs.Add(1) }

// PlaylistsLoadedMsg carries the result of the one-time playlist fetch.
type PlaylistsLoadedMsg struct {
	Owner     uint64
	Playlists []models.PlaylistRef
	Err       error
}

// GenresLoadedMsg carries a genre fetch tagged with the generation it was issued under.
type GenresLoadedMsg struct {
	Owner      uint64
	Generation uint64
	PlaylistID string
	Genres     models.GenreSet
	Err        error
}

// SetCreatedMsg carries the result of a create-set submission.
type SetCreatedMsg struct {
	Owner  uint64
	Result *services.SetResult
	Err    error
}

// FavoritesCreatedMsg carries the result of a favorites submission.
type FavoritesCreatedMsg struct {
	Owner  uint64
	Status string
	Err    error
}

// observeAuth ends the session when err says the backend no longer recognizes it.
func observeAuth(session *shared.Session, logger *log.Logger, err error) {
	if errors.Is(err, shared.ErrAuthRequired) {
		logger.Warn("session rejected by backend", "error", err)
		session.Invalidate()
	}
}
