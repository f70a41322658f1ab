package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
)

// SetState is where the Set Builder is in its lifecycle.
type SetState int

const (
	SelectingPlaylist SetState = iota
	LoadingGenres
	GenresReady
	Submitting
	Succeeded
	Failed
)

func (s SetState) String() string {
	switch s {
	case SelectingPlaylist:
		return "selecting_playlist"
	case LoadingGenres:
		return "loading_genres"
	case GenresReady:
		return "genres_ready"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SetBuilder collects a set request and submits it.
type SetBuilder struct {
	ctx     context.Context
	gateway services.Gateway
	session *shared.Session
	logger  *log.Logger
	id      uint64

	state       SetState
	initialized bool
	playlists   []models.PlaylistRef
	loadErr     error

	playlistID string
	generation uint64
	genres     models.GenreSet
	genresErr  error
	useGenres  bool
	selected   map[string]bool

	durationInput string
	playlistName  string
	visibility    models.Visibility

	inFlight bool
	result   *services.SetResult
	err      error
	status   string
}

// NewSetBuilder creates a Set Builder. ctx bounds every call it makes.
func NewSetBuilder(ctx context.Context, gw services.Gateway, session *shared.Session, logger *log.Logger) *SetBuilder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SetBuilder{
		ctx:        ctx,
		gateway:    gw,
		session:    session,
		logger:     logger.WithPrefix("set-builder"),
		id:         nextID(),
		selected:   make(map[string]bool),
		visibility: models.Public,
	}
}

// Init fetches the playlist list. Only the first call does anything; a failed fetch is
// reported through [SetBuilder.LoadErr] and is not retried.
func (b *SetBuilder) Init() tea.Cmd {
	if b.initialized {
		return nil
	}
	b.initialized = true

	ctx, gw, owner := b.ctx, b.gateway, b.id
	return func() tea.Msg {
		playlists, err := gw.ListUserPlaylists(ctx)
		return PlaylistsLoadedMsg{Owner: owner, Playlists: playlists, Err: err}
	}
}

// SelectPlaylist makes id the source playlist and, when it changed, starts a genre fetch.
//
// Genres and the genre selection are cleared. Selecting "" goes back to choosing a playlist.
// Any fetch still in flight for an earlier selection will be ignored when it lands. Selection
// is fixed while a submission is in flight.
func (b *SetBuilder) SelectPlaylist(id string) tea.Cmd {
	if b.inFlight || id == b.playlistID {
		return nil
	}

	b.playlistID = id
	b.genres = nil
	b.genresErr = nil
	clear(b.selected)
	b.generation++

	if id == "" {
		b.setState(SelectingPlaylist)
		return nil
	}
	b.setState(LoadingGenres)

	ctx, gw, owner, gen := b.ctx, b.gateway, b.id, b.generation
	return func() tea.Msg {
		genres, err := gw.ListGenresForPlaylist(ctx, id)
		return GenresLoadedMsg{Owner: owner, Generation: gen, PlaylistID: id, Genres: genres, Err: err}
	}
}

// SetUseGenres turns genre filtering on or off. The selection is kept either way.
func (b *SetBuilder) SetUseGenres(on bool) { b.useGenres = on }

// ToggleGenre flips g in the selection. Genres outside the current set are ignored.
func (b *SetBuilder) ToggleGenre(g string) bool {
	if !b.genres.Contains(g) {
		return false
	}
	if b.selected[g] {
		delete(b.selected, g)
	} else {
		b.selected[g] = true
	}
	return true
}

// SelectedGenres returns the selection in genre-set order.
func (b *SetBuilder) SelectedGenres() []string {
	out := make([]string, 0, len(b.selected))
	for _, g := range b.genres {
		if b.selected[g] {
			out = append(out, g)
		}
	}
	return out
}

// IsGenreSelected reports whether g is in the selection.
func (b *SetBuilder) IsGenreSelected(g string) bool { return b.selected[g] }

// SetDuration stores the raw duration input; see [SetBuilder.DurationMinutes].
func (b *SetBuilder) SetDuration(input string) { b.durationInput = input }

// DurationMinutes is nil for empty, non-numeric or zero input, else the parsed minutes.
func (b *SetBuilder) DurationMinutes() *int {
	n, ok := shared.ParsePositiveInt(strings.TrimSpace(b.durationInput))
	if !ok {
		return nil
	}
	return &n
}

func (b *SetBuilder) SetPlaylistName(name string)       { b.playlistName = name }
func (b *SetBuilder) SetVisibility(v models.Visibility) { b.visibility = v }

// Request builds the submission from the current inputs. Genres are only included when
// filtering is on.
func (b *SetBuilder) Request() models.SetRequest {
	req := models.SetRequest{
		PlaylistName:    b.playlistName,
		Visibility:      b.visibility,
		DurationMinutes: b.DurationMinutes(),
	}
	if b.playlistID != "" {
		id := b.playlistID
		req.SourcePlaylistID = &id
	}
	if b.useGenres {
		req.Genres = b.SelectedGenres()
	}
	return req
}

// Submit sends the set request.
//
// While a submission is in flight it returns (nil, nil). A request that fails validation
// returns the error without touching the network or the state.
func (b *SetBuilder) Submit() (tea.Cmd, error) {
	if b.inFlight {
		b.logger.Debug("submit ignored: already in flight")
		return nil, nil
	}

	req := b.Request()
	if err := req.Validate(); err != nil {
		b.status = shared.UserMessage(err)
		return nil, err
	}

	b.inFlight = true
	b.err = nil
	b.status = ""
	b.setState(Submitting)

	ctx, gw, owner := b.ctx, b.gateway, b.id
	return func() tea.Msg {
		res, err := gw.CreateSet(ctx, req)
		return SetCreatedMsg{Owner: owner, Result: res, Err: err}
	}, nil
}

// Owns reports whether msg was produced by one of this builder's commands.
func (b *SetBuilder) Owns(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case PlaylistsLoadedMsg:
		return msg.Owner == b.id
	case GenresLoadedMsg:
		return msg.Owner == b.id
	case SetCreatedMsg:
		return msg.Owner == b.id
	}
	return false
}

// Update applies a message produced by one of the builder's commands. Messages issued by
// any other builder are dropped.
func (b *SetBuilder) Update(msg tea.Msg) tea.Cmd {
	if !b.Owns(msg) {
		b.logger.Debug("dropping message from another builder", "msg", fmt.Sprintf("%T", msg))
		return nil
	}

	switch msg := msg.(type) {
	case PlaylistsLoadedMsg:
		if msg.Err != nil {
			observeAuth(b.session, b.logger, msg.Err)
			b.loadErr = msg.Err
			b.status = shared.UserMessage(msg.Err)
			b.logger.Warn("failed to load playlists", "error", msg.Err)
			return nil
		}
		b.playlists = msg.Playlists
		b.logger.Debug("playlists loaded", "count", len(msg.Playlists))

	case GenresLoadedMsg:
		if msg.Generation != b.generation {
			b.logger.Debug("dropping stale genres", "playlist", msg.PlaylistID, "generation", msg.Generation)
			return nil
		}
		if msg.Err != nil {
			observeAuth(b.session, b.logger, msg.Err)
			b.genresErr = msg.Err
			b.status = shared.UserMessage(msg.Err)
			b.logger.Warn("failed to load genres", "playlist", msg.PlaylistID, "error", msg.Err)
		} else {
			b.genres = msg.Genres
		}
		if !b.inFlight {
			b.setState(GenresReady)
		}

	case SetCreatedMsg:
		b.inFlight = false
		if msg.Err != nil {
			observeAuth(b.session, b.logger, msg.Err)
			b.err = msg.Err
			b.status = shared.UserMessage(msg.Err)
			b.logger.Warn("create set failed", "error", msg.Err)
			b.setState(Failed)
			return nil
		}
		b.result = msg.Result
		b.status = msg.Result.Status
		b.setState(Succeeded)
	}
	return nil
}

func (b *SetBuilder) setState(s SetState) {
	if b.state != s {
		b.logger.Debug("state", "from", b.state, "to", s)
	}
	b.state = s
}

func (b *SetBuilder) ID() uint64                      { return b.id }
func (b *SetBuilder) State() SetState                 { return b.state }
func (b *SetBuilder) Playlists() []models.PlaylistRef { return b.playlists }
func (b *SetBuilder) LoadErr() error                  { return b.loadErr }
func (b *SetBuilder) PlaylistID() string              { return b.playlistID }
func (b *SetBuilder) Genres() models.GenreSet         { return b.genres }
func (b *SetBuilder) GenresErr() error                { return b.genresErr }
func (b *SetBuilder) UseGenres() bool                 { return b.useGenres }
func (b *SetBuilder) DurationInput() string           { return b.durationInput }
func (b *SetBuilder) PlaylistName() string            { return b.playlistName }
func (b *SetBuilder) Visibility() models.Visibility   { return b.visibility }
func (b *SetBuilder) InFlight() bool                  { return b.inFlight }
func (b *SetBuilder) Err() error                      { return b.err }

// Status is the message to show the user, if any.
func (b *SetBuilder) Status() string { return b.status }

// Result hands off the track list of a successful submission; nil otherwise.
func (b *SetBuilder) Result() models.TrackList {
	if b.state != Succeeded || b.result == nil {
		return nil
	}
	return b.result.Tracks
}
