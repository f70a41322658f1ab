package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setsmith/internal/artwork"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
	tu "github.com/desertthunder/setsmith/internal/testing"
	"github.com/desertthunder/setsmith/internal/workflow"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, gw *tu.FakeGateway) *Model {
	t.Helper()
	m := NewModel(context.Background(), Deps{
		Gateway: gw,
		Session: shared.NewSession(false),
		Export:  shared.DefaultConfig().Export,
	})
	t.Cleanup(m.closeDetails)
	return m
}

func loggedInModel(t *testing.T, gw *tu.FakeGateway) *Model {
	t.Helper()
	gw.LoggedIn = true
	m := newTestModel(t, gw)
	m.Update(m.checkAuth()())
	return m
}

func TestHome(t *testing.T) {
	t.Run("logged in shows the full menu", func(t *testing.T) {
		m := loggedInModel(t, &tu.FakeGateway{})

		if !m.deps.Session.Valid() {
			t.Error("expected session to be valid")
		}
		if n := len(m.menu.Items()); n != 3 {
			t.Errorf("expected 3 menu items, got %d", n)
		}
		if !strings.Contains(m.View(), "Logged in") {
			t.Errorf("expected logged in marker, got %q", m.View())
		}
	})

	t.Run("logged out offers login only", func(t *testing.T) {
		m := newTestModel(t, &tu.FakeGateway{})
		m.Update(m.checkAuth()())

		items := m.menu.Items()
		if len(items) != 1 || items[0].(menuItem).action != actionLogin {
			t.Errorf("expected only login, got %+v", items)
		}
	})

	t.Run("auth check failure shows network message", func(t *testing.T) {
		m := newTestModel(t, &tu.FakeGateway{Err: fmt.Errorf("%w: refused", shared.ErrNetwork)})
		m.Update(m.checkAuth()())

		if m.status != "Could not reach the server. Please try again." || !m.statusErr {
			t.Errorf("unexpected status %q (err=%t)", m.status, m.statusErr)
		}
	})

	t.Run("login without a login func shows the url", func(t *testing.T) {
		m := newTestModel(t, &tu.FakeGateway{})
		m.runMenu(actionLogin)

		if !strings.Contains(m.status, "/login") {
			t.Errorf("expected login url in status, got %q", m.status)
		}
	})

	t.Run("login swaps in the new gateway", func(t *testing.T) {
		next := &tu.FakeGateway{LoggedIn: true}
		m := newTestModel(t, &tu.FakeGateway{})
		m.deps.Login = func(context.Context) (services.Gateway, error) { return next, nil }

		m.Update(m.login()())
		m.Update(m.checkAuth()())

		if m.deps.Gateway != next {
			t.Error("expected gateway to be replaced")
		}
		if !m.deps.Session.Valid() {
			t.Error("expected session to be valid after login")
		}
	})

	t.Run("sign out ends the session", func(t *testing.T) {
		m := loggedInModel(t, &tu.FakeGateway{})
		m.Update(m.signOut()())

		if m.deps.Session.Valid() {
			t.Error("expected session to end")
		}
		if m.status != "Signed out" {
			t.Errorf("unexpected status %q", m.status)
		}
	})

	t.Run("ctrl+c quits", func(t *testing.T) {
		m := newTestModel(t, &tu.FakeGateway{})
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestCreateSet(t *testing.T) {
	playlists := []models.PlaylistRef{{ID: "p1", Name: "House"}, {ID: "p2", Name: "Techno"}}

	setup := func(t *testing.T, gw *tu.FakeGateway) *Model {
		t.Helper()
		m := loggedInModel(t, gw)
		m.runMenu(actionCreateSet)
		m.Update(workflow.PlaylistsLoadedMsg{Owner: m.create.builder.ID(), Playlists: playlists})
		return m
	}

	t.Run("playlists fill the list", func(t *testing.T) {
		m := setup(t, &tu.FakeGateway{})

		if m.view != CreateSetView {
			t.Fatalf("expected create set view, got %v", m.view)
		}
		if n := len(m.create.playlists.Items()); n != 2 {
			t.Errorf("expected 2 playlists, got %d", n)
		}
	})

	t.Run("genres can be toggled", func(t *testing.T) {
		gw := &tu.FakeGateway{Genres: map[string][]string{"p1": {"techno", "house"}}}
		m := setup(t, gw)

		m.Update(m.create.builder.SelectPlaylist("p1")())
		m.create.focus = fieldGenres
		m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		m.Update(runes("g"))

		b := m.create.builder
		if !b.IsGenreSelected("house") {
			t.Error("expected first genre to be selected")
		}
		if !b.UseGenres() {
			t.Error("expected genre filter to be on")
		}
		if !strings.Contains(m.View(), "House") {
			t.Error("expected title-cased genre in view")
		}
	})

	t.Run("submit without playlist shows validation message", func(t *testing.T) {
		m := setup(t, &tu.FakeGateway{})
		m.create.focus = fieldVisibility
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if m.status != "Please select a playlist" {
			t.Errorf("unexpected status %q", m.status)
		}
	})

	t.Run("auth failure returns home", func(t *testing.T) {
		m := setup(t, &tu.FakeGateway{})
		m.Update(workflow.SetCreatedMsg{Owner: m.create.builder.ID(), Err: fmt.Errorf("%w: 401", shared.ErrAuthRequired)})

		if m.view != HomeView {
			t.Errorf("expected home view, got %v", m.view)
		}
		if m.status != "Your session has expired. Please log in again." {
			t.Errorf("unexpected status %q", m.status)
		}
		if m.deps.Session.Valid() {
			t.Error("expected session to be invalidated")
		}
	})

	t.Run("success opens set details", func(t *testing.T) {
		m := setup(t, &tu.FakeGateway{})
		tracks := models.TrackList{
			{Artist: "A", Name: "One", Timestamp: "0:00"},
			{Artist: "B", Name: "Two", Timestamp: "3:30"},
		}
		m.Update(workflow.SetCreatedMsg{Owner: m.create.builder.ID(), Result: &services.SetResult{Status: "ok", Tracks: tracks}})

		if m.view != SetDetailsView {
			t.Fatalf("expected details view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "2. B - Two (3:30)") {
			t.Errorf("expected track lines in view, got %q", m.View())
		}
	})

	t.Run("esc goes home", func(t *testing.T) {
		m := setup(t, &tu.FakeGateway{})
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.view != HomeView || m.create != nil {
			t.Error("expected create screen to close")
		}
	})

	t.Run("late genres from a closed screen are dropped", func(t *testing.T) {
		gw := &tu.FakeGateway{Genres: map[string][]string{"p1": {"rock"}, "p2": {"jazz"}}}
		m := setup(t, gw)
		late := m.create.builder.SelectPlaylist("p1")

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		m.runMenu(actionCreateSet)
		m.Update(workflow.PlaylistsLoadedMsg{Owner: m.create.builder.ID(), Playlists: playlists})
		m.Update(m.create.builder.SelectPlaylist("p2")())
		m.Update(late())

		b := m.create.builder
		if b.PlaylistID() != "p2" {
			t.Fatalf("expected p2 to stay selected, got %q", b.PlaylistID())
		}
		if got := b.Genres(); len(got) != 1 || got[0] != "jazz" {
			t.Errorf("expected genres of p2, got %v", got)
		}
	})

	t.Run("late result from a closed screen is dropped", func(t *testing.T) {
		m := setup(t, &tu.FakeGateway{})
		stale := workflow.SetCreatedMsg{Owner: m.create.builder.ID(), Result: &services.SetResult{Status: "ok"}}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		m.runMenu(actionCreateSet)
		m.Update(stale)

		if m.view != CreateSetView || m.details != nil {
			t.Errorf("expected to stay on the new create screen, got %v", m.view)
		}
		if m.create.builder.State() != workflow.SelectingPlaylist {
			t.Errorf("expected fresh builder state, got %v", m.create.builder.State())
		}
	})
}

func TestDetails(t *testing.T) {
	open := func(t *testing.T) *Model {
		t.Helper()
		m := loggedInModel(t, &tu.FakeGateway{})
		m.openDetails(models.TrackList{{Artist: "A", Name: "One", Timestamp: "0:00"}})
		return m
	}

	t.Run("image export needs a title", func(t *testing.T) {
		m := open(t)
		m.Update(runes("i"))

		if m.details.exporting {
			t.Error("expected no export to start")
		}
		if m.status != "Title cannot be blank or just whitespace" {
			t.Errorf("unexpected status %q", m.status)
		}
		if m.details.focus != detailTitle {
			t.Error("expected focus to move to the title")
		}
	})

	t.Run("style keys stay in range", func(t *testing.T) {
		m := open(t)
		m.Update(runes("b"))
		for range 20 {
			m.Update(runes("]"))
			m.Update(runes("+"))
		}

		s := m.details.style
		if !s.Bold {
			t.Error("expected bold")
		}
		if s.CoverSize != models.MaxCoverSize || s.TextSize != models.MaxTextSize {
			t.Errorf("expected clamped sizes, got cover %d text %d", s.CoverSize, s.TextSize)
		}
	})

	t.Run("text export writes setlist", func(t *testing.T) {
		m := open(t)
		dir := t.TempDir()
		m.deps.Export.OutputDir = dir

		_, cmd := m.Update(runes("t"))
		if cmd == nil {
			t.Fatal("expected export command")
		}
		m.Update(cmd())

		if !strings.HasSuffix(m.status, "setlist.txt") {
			t.Errorf("unexpected status %q", m.status)
		}
		if got := tu.MustReadFile(t, dir+"/setlist.txt"); got != "1. A - One (0:00)" {
			t.Errorf("unexpected export %q", got)
		}
	})

	t.Run("out of order progress counts every update", func(t *testing.T) {
		m := loggedInModel(t, &tu.FakeGateway{})
		m.deps.Covers = artwork.SourceFunc(func(ctx context.Context, url string) ([]byte, string, error) {
			return nil, "", errors.New("offline")
		})
		m.openDetails(models.TrackList{
			{Artist: "A", Name: "One", Timestamp: "0:00", AlbumCoverURL: "https://img/1"},
			{Artist: "B", Name: "Two", Timestamp: "3:00", AlbumCoverURL: "https://img/2"},
			{Artist: "C", Name: "Three", Timestamp: "6:00", AlbumCoverURL: "https://img/3"},
		})

		_, cmd := m.Update(coverProgressMsg{Step: 3, Total: 3})
		if cmd == nil {
			t.Fatal("expected to keep listening after the last step arrived first")
		}
		m.Update(coverProgressMsg{Step: 1, Total: 3, Err: errors.New("decode failed")})
		_, cmd = m.Update(coverProgressMsg{Step: 2, Total: 3})
		if cmd != nil {
			t.Error("expected listening to stop once every update arrived")
		}

		if m.details.loaded != 3 || m.details.failed != 1 {
			t.Errorf("expected 3 loaded with 1 failed, got %d and %d", m.details.loaded, m.details.failed)
		}
		if !strings.Contains(m.View(), "(1 unavailable)") {
			t.Errorf("expected unavailable count in view, got %q", m.View())
		}
	})

	t.Run("esc closes the board", func(t *testing.T) {
		m := open(t)
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.details != nil || m.view != HomeView {
			t.Error("expected details to close")
		}
	})
}

func TestFavorites(t *testing.T) {
	t.Run("success goes home", func(t *testing.T) {
		gw := &tu.FakeGateway{FavoritesStatus: "Playlist created"}
		m := loggedInModel(t, gw)
		m.runMenu(actionFavorites)

		cmd, err := m.favorites.favorites.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		m.Update(cmd())

		if m.view != HomeView {
			t.Errorf("expected home view, got %v", m.view)
		}
		if !strings.Contains(m.status, "Playlist created") {
			t.Errorf("unexpected status %q", m.status)
		}
		if got := gw.LastFavorites; got == nil || got.Limit != 20 || got.Range != models.MediumTerm {
			t.Errorf("unexpected request %+v", got)
		}
	})

	t.Run("late result from a closed screen is dropped", func(t *testing.T) {
		gw := &tu.FakeGateway{FavoritesStatus: "Playlist created"}
		m := loggedInModel(t, gw)
		m.runMenu(actionFavorites)
		cmd, err := m.favorites.favorites.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		m.runMenu(actionFavorites)
		m.Update(cmd())

		if m.view != FavoritesView || m.favorites.favorites.Done() {
			t.Errorf("expected the new favorites screen to be untouched, got %v", m.view)
		}
	})

	t.Run("range cycles", func(t *testing.T) {
		m := loggedInModel(t, &tu.FakeGateway{})
		m.runMenu(actionFavorites)
		m.favorites.focus = favRange
		m.Update(tea.KeyMsg{Type: tea.KeyRight})

		if got := models.TimeRanges[m.favorites.rangeIdx]; got != models.LongTerm {
			t.Errorf("expected long_term, got %s", got)
		}
	})
}
