package workflow

import (
	"context"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
)

const (
	DefaultFavoritesLimit = 20
	MaxFavoritesLimit     = 50 // most top tracks the backend can ask Spotify for
	DefaultTimeRange      = models.MediumTerm
)

// FavoritesState is where the Favorites workflow is in its lifecycle.
type FavoritesState int

const (
	Idle FavoritesState = iota
	FavoritesSubmitting
	FavoritesSucceeded
	FavoritesFailed
)

func (s FavoritesState) String() string {
	switch s {
	case Idle:
		return "idle"
	case FavoritesSubmitting:
		return "submitting"
	case FavoritesSucceeded:
		return "succeeded"
	case FavoritesFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Favorites builds a playlist from the user's top tracks.
type Favorites struct {
	ctx     context.Context
	gateway services.Gateway
	session *shared.Session
	logger  *log.Logger
	id      uint64

	state        FavoritesState
	limitInput   string
	rangeInput   string
	playlistName string
	visibility   models.Visibility

	inFlight bool
	err      error
	status   string
}

// NewFavorites creates the workflow with a limit of 20 over the medium_term range.
func NewFavorites(ctx context.Context, gw services.Gateway, session *shared.Session, logger *log.Logger) *Favorites {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Favorites{
		ctx:        ctx,
		gateway:    gw,
		session:    session,
		logger:     logger.WithPrefix("favorites"),
		id:         nextID(),
		rangeInput: string(DefaultTimeRange),
		visibility: models.Public,
	}
}

// SetLimit stores the raw number-of-songs input; see [Favorites.Limit].
func (f *Favorites) SetLimit(input string) { f.limitInput = input }

// Limit is the parsed limit: a positive integer capped at 50, or 20 when the input is not one.
func (f *Favorites) Limit() int {
	n, ok := shared.ParsePositiveInt(strings.TrimSpace(f.limitInput))
	if !ok {
		return DefaultFavoritesLimit
	}
	return min(n, MaxFavoritesLimit)
}

// SetRange stores the raw time range input. It is checked on submit.
func (f *Favorites) SetRange(input string) { f.rangeInput = input }

func (f *Favorites) SetPlaylistName(name string)       { f.playlistName = name }
func (f *Favorites) SetVisibility(v models.Visibility) { f.visibility = v }

// Request builds the submission, failing on an unknown time range.
func (f *Favorites) Request() (models.FavoritesRequest, error) {
	r, err := models.ParseTimeRange(f.rangeInput)
	if err != nil {
		return models.FavoritesRequest{}, err
	}
	req := models.FavoritesRequest{
		Limit:        f.Limit(),
		Range:        r,
		PlaylistName: f.playlistName,
		Visibility:   f.visibility,
	}
	return req, req.Validate()
}

// Submit sends the favorites request, with the same in-flight guard as [SetBuilder.Submit].
func (f *Favorites) Submit() (tea.Cmd, error) {
	if f.inFlight {
		f.logger.Debug("submit ignored: already in flight")
		return nil, nil
	}

	req, err := f.Request()
	if err != nil {
		f.status = shared.UserMessage(err)
		return nil, err
	}

	f.inFlight = true
	f.err = nil
	f.status = ""
	f.setState(FavoritesSubmitting)

	ctx, gw, owner := f.ctx, f.gateway, f.id
	return func() tea.Msg {
		status, err := gw.CreateFavoritesSet(ctx, req)
		return FavoritesCreatedMsg{Owner: owner, Status: status, Err: err}
	}, nil
}

// Update applies a message produced by this workflow's [Favorites.Submit].
func (f *Favorites) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(FavoritesCreatedMsg)
	if !ok || m.Owner != f.id {
		return nil
	}

	f.inFlight = false
	if m.Err != nil {
		observeAuth(f.session, f.logger, m.Err)
		f.err = m.Err
		f.status = shared.UserMessage(m.Err)
		f.logger.Warn("favorites failed", "error", m.Err)
		f.setState(FavoritesFailed)
		return nil
	}

	f.status = m.Status
	f.setState(FavoritesSucceeded)
	return nil
}

func (f *Favorites) setState(s FavoritesState) {
	if f.state != s {
		f.logger.Debug("state", "from", f.state, "to", s)
	}
	f.state = s
}

// Done reports that the playlist was created and the user should be sent home.
func (f *Favorites) Done() bool { return f.state == FavoritesSucceeded }

func (f *Favorites) ID() uint64                    { return f.id }
func (f *Favorites) State() FavoritesState         { return f.state }
func (f *Favorites) LimitInput() string            { return f.limitInput }
func (f *Favorites) RangeInput() string            { return f.rangeInput }
func (f *Favorites) PlaylistName() string          { return f.playlistName }
func (f *Favorites) Visibility() models.Visibility { return f.visibility }
func (f *Favorites) InFlight() bool                { return f.inFlight }
func (f *Favorites) Err() error                    { return f.err }
func (f *Favorites) Status() string                { return f.status }
