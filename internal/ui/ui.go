package ui

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/artwork"
	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/desertthunder/setsmith/internal/workflow"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	CreateSetView
	FavoritesView
	SetDetailsView
)

// Deps are the collaborators the TUI drives.
type Deps struct {
	Gateway services.Gateway
	Session *shared.Session
	Covers  artwork.Source
	Export  shared.ExportConfig
	Logger  *log.Logger

	// Login runs the browser login and returns a gateway carrying the new session.
	// When nil, the home screen only shows the login URL.
	Login func(ctx context.Context) (services.Gateway, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *log.Logger
	view   ViewState
	width  int
	height int

	authChecked bool
	busy        bool
	menu        list.Model
	status      string
	statusErr   bool

	create    *createSetScreen
	favorites *favoritesScreen
	details   *detailsScreen

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Session == nil {
		deps.Session = shared.NewSession(false)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:     ctx,
		deps:    deps,
		logger:  deps.Logger.WithPrefix("tui"),
		view:    HomeView,
		width:   80,
		height:  24,
		menu:    newMenu(false, 76, 16),
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init asks the backend whether the session is logged in.
func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(m.checkAuth(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		switch m.view {
		case HomeView:
			return m.updateHome(msg)
		case CreateSetView:
			return m.updateCreateSet(msg)
		case FavoritesView:
			return m.updateFavorites(msg)
		case SetDetailsView:
			return m.updateDetails(msg)
		}

	case authCheckedMsg:
		return m.onAuthChecked(msg)

	case loginDoneMsg:
		return m.onLoginDone(msg)

	case signedOutMsg:
		return m.onSignedOut(msg)

	case workflow.PlaylistsLoadedMsg, workflow.GenresLoadedMsg, workflow.SetCreatedMsg:
		return m.onBuilderMsg(msg)

	case workflow.FavoritesCreatedMsg:
		return m.onFavoritesMsg(msg)

	case coverProgressMsg:
		return m.onCoverProgress(msg)

	case exportDoneMsg:
		return m.onExportDone(msg)
	}

	return m.forward(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case HomeView:
		return m.renderHome()
	case CreateSetView:
		return m.renderCreateSet()
	case FavoritesView:
		return m.renderFavorites()
	case SetDetailsView:
		return m.renderDetails()
	default:
		return ""
	}
}

// forward passes messages the model does not handle to the focused component.
func (m *Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case HomeView:
		m.menu, cmd = m.menu.Update(msg)
	case CreateSetView:
		if m.create != nil {
			m.create.playlists, cmd = m.create.playlists.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) resize() {
	w, h := max(m.width-4, 20), max(m.height-10, 5)
	m.menu.SetSize(w, h)
	if m.create != nil {
		m.create.playlists.SetSize(w, max(h-8, 5))
	}
}

// setStatus shows msg; a non-nil err switches it to the failure style.
func (m *Model) setStatus(msg string, err error) {
	m.status = msg
	m.statusErr = err != nil
}

// expired sends the user home when a workflow call found the session gone.
func (m *Model) expired() bool {
	if !m.deps.Session.Expired() {
		return false
	}
	m.closeDetails()
	m.create, m.favorites = nil, nil
	m.view = HomeView
	m.menu.SetItems(menuItems(false))
	m.setStatus(shared.UserMessage(shared.ErrAuthRequired), shared.ErrAuthRequired)
	return true
}

func (m *Model) quit() tea.Cmd {
	m.closeDetails()
	return tea.Quit
}
