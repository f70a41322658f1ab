package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/workflow"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type setField int

const (
	fieldPlaylists setField = iota
	fieldGenres
	fieldDuration
	fieldName
	fieldVisibility
	setFieldCount
)

const genreWindow = 8

// createSetScreen is the form around a [workflow.SetBuilder].
type createSetScreen struct {
	builder     *workflow.SetBuilder
	playlists   list.Model
	genreCursor int
	duration    textinput.Model
	name        textinput.Model
	focus       setField
	caser       cases.Caser
}

func newCreateSetScreen(b *workflow.SetBuilder, width, height int) *createSetScreen {
	duration := textinput.New()
	duration.Placeholder = "minutes (optional)"
	duration.CharLimit = 4

	name := textinput.New()
	name.Placeholder = "My Set"
	name.CharLimit = 100

	return &createSetScreen{
		builder:   b,
		playlists: newPlaylistList(nil, width, height),
		duration:  duration,
		name:      name,
		caser:     cases.Title(language.English),
	}
}

// setFocus moves focus to f, focusing the text input it names if any.
func (s *createSetScreen) setFocus(f setField) tea.Cmd {
	s.focus = (f + setFieldCount) % setFieldCount
	s.duration.Blur()
	s.name.Blur()

	switch s.focus {
	case fieldDuration:
		return s.duration.Focus()
	case fieldName:
		return s.name.Focus()
	}
	return nil
}

func (s *createSetScreen) toggleVisibility() {
	if s.builder.Visibility() == models.Private {
		s.builder.SetVisibility(models.Public)
	} else {
		s.builder.SetVisibility(models.Private)
	}
}

func (s *createSetScreen) moveGenreCursor(delta int) {
	n := len(s.builder.Genres())
	if n == 0 {
		s.genreCursor = 0
		return
	}
	s.genreCursor = min(max(s.genreCursor+delta, 0), n-1)
}

func (m *Model) submitSet() (tea.Model, tea.Cmd) {
	cmd, err := m.create.builder.Submit()
	if err != nil {
		m.setStatus(m.create.builder.Status(), err)
		return m, nil
	}
	if cmd == nil {
		return m, nil
	}
	m.setStatus("", nil)
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) updateCreateSet(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.create
	if s == nil {
		m.view = HomeView
		return m, nil
	}
	if s.builder.InFlight() {
		return m, nil
	}

	filtering := s.focus == fieldPlaylists && s.playlists.FilterState() == list.Filtering
	if !filtering {
		switch {
		case key.Matches(msg, m.keys.back):
			m.create = nil
			m.view = HomeView
			m.setStatus("", nil)
			return m, nil
		case key.Matches(msg, m.keys.submit):
			return m.submitSet()
		case key.Matches(msg, m.keys.next):
			return m, s.setFocus(s.focus + 1)
		case key.Matches(msg, m.keys.prev):
			return m, s.setFocus(s.focus - 1)
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldPlaylists:
		if !filtering && key.Matches(msg, m.keys.enter) {
			item, ok := s.playlists.SelectedItem().(playlistItem)
			if !ok {
				return m, nil
			}
			s.genreCursor = 0
			m.setStatus("", nil)
			fetch := s.builder.SelectPlaylist(item.playlist.ID)
			return m, tea.Batch(fetch, s.setFocus(fieldGenres), m.spinner.Tick)
		}
		s.playlists, cmd = s.playlists.Update(msg)

	case fieldGenres:
		switch {
		case key.Matches(msg, m.keys.up):
			s.moveGenreCursor(-1)
		case key.Matches(msg, m.keys.down):
			s.moveGenreCursor(1)
		case key.Matches(msg, m.keys.toggle):
			if genres := s.builder.Genres(); s.genreCursor < len(genres) {
				s.builder.ToggleGenre(genres[s.genreCursor])
			}
		case key.Matches(msg, m.keys.useGenres):
			s.builder.SetUseGenres(!s.builder.UseGenres())
		case key.Matches(msg, m.keys.quit):
			return m, m.quit()
		}

	case fieldDuration:
		if key.Matches(msg, m.keys.enter) {
			return m, s.setFocus(fieldName)
		}
		s.duration, cmd = s.duration.Update(msg)
		s.builder.SetDuration(s.duration.Value())

	case fieldName:
		if key.Matches(msg, m.keys.enter) {
			return m.submitSet()
		}
		s.name, cmd = s.name.Update(msg)
		s.builder.SetPlaylistName(s.name.Value())

	case fieldVisibility:
		switch {
		case key.Matches(msg, m.keys.visibility), key.Matches(msg, m.keys.toggle):
			s.toggleVisibility()
		case key.Matches(msg, m.keys.enter):
			return m.submitSet()
		case key.Matches(msg, m.keys.quit):
			return m, m.quit()
		}
	}
	return m, cmd
}

func (m *Model) onBuilderMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.create
	if s == nil || !s.builder.Owns(msg) {
		m.logger.Debug("dropping set builder message for a closed screen", "msg", fmt.Sprintf("%T", msg))
		return m, nil
	}

	cmd := s.builder.Update(msg)
	if m.expired() {
		return m, nil
	}

	b := s.builder
	switch msg.(type) {
	case workflow.PlaylistsLoadedMsg:
		if err := b.LoadErr(); err != nil {
			m.setStatus(b.Status(), err)
			break
		}
		items := make([]list.Item, len(b.Playlists()))
		for i, pl := range b.Playlists() {
			items[i] = playlistItem{playlist: pl}
		}
		cmd = tea.Batch(cmd, s.playlists.SetItems(items))

	case workflow.GenresLoadedMsg:
		s.moveGenreCursor(0)
		if err := b.GenresErr(); err != nil {
			m.setStatus(b.Status(), err)
		}

	case workflow.SetCreatedMsg:
		switch b.State() {
		case workflow.Failed:
			m.setStatus(b.Status(), b.Err())
		case workflow.Succeeded:
			m.setStatus(fmt.Sprintf("Set created (%s)", b.Status()), nil)
			return m, tea.Batch(cmd, m.openDetails(b.Result()))
		}
	}
	return m, cmd
}

func (m *Model) renderCreateSet() string {
	s := m.create
	if s == nil {
		return ""
	}
	b := s.builder

	var sb strings.Builder
	sb.WriteString(styles.title.Render("Create a Set"))
	sb.WriteString("\n")

	switch {
	case b.LoadErr() != nil:
		sb.WriteString(styles.err.Render("Could not load playlists") + "\n")
	case b.Playlists() == nil:
		sb.WriteString(m.spinner.View() + " Loading playlists...\n")
	default:
		sb.WriteString(s.playlists.View() + "\n")
	}

	sb.WriteString("\n" + s.fieldLabel(fieldGenres, "Genres"))
	switch b.State() {
	case workflow.SelectingPlaylist:
		sb.WriteString(styles.help.Render("select a playlist first"))
	case workflow.LoadingGenres:
		sb.WriteString(m.spinner.View() + " Loading genres...")
	default:
		filter := "off"
		if b.UseGenres() {
			filter = "on"
		}
		sb.WriteString(fmt.Sprintf("filter %s, %d selected", filter, len(b.SelectedGenres())))
		sb.WriteString(s.renderGenres())
	}

	sb.WriteString("\n" + s.fieldLabel(fieldDuration, "Duration") + s.duration.View())
	sb.WriteString("\n" + s.fieldLabel(fieldName, "Name") + s.name.View())
	sb.WriteString("\n" + s.fieldLabel(fieldVisibility, "Visibility") + b.Visibility().String())

	if b.InFlight() {
		sb.WriteString("\n\n" + m.spinner.View() + " Creating set...")
	}
	sb.WriteString("\n\n" + styles.Status(m.status, m.statusErr))

	helpKeys := []key.Binding{m.keys.next, m.keys.toggle, m.keys.useGenres, m.keys.submit, m.keys.back}
	sb.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return sb.String()
}

func (s *createSetScreen) fieldLabel(f setField, label string) string {
	if s.focus == f {
		return styles.focused.Width(12).Render("> " + label)
	}
	return styles.label.Render("  " + label)
}

func (s *createSetScreen) renderGenres() string {
	genres := s.builder.Genres()
	if len(genres) == 0 {
		return "\n" + styles.help.Render("  no genres found")
	}

	start := max(0, min(s.genreCursor-genreWindow/2, len(genres)-genreWindow))
	end := min(start+genreWindow, len(genres))

	var sb strings.Builder
	for i := start; i < end; i++ {
		g := genres[i]
		cursor := "  "
		if s.focus == fieldGenres && i == s.genreCursor {
			cursor = "> "
		}
		check := "[ ]"
		line := s.caser.String(g)
		if s.builder.IsGenreSelected(g) {
			check = "[x]"
			line = styles.selected.Render(line)
		}
		sb.WriteString(fmt.Sprintf("\n  %s%s %s", cursor, check, line))
	}
	if end < len(genres) {
		sb.WriteString(styles.help.Render(fmt.Sprintf("\n  ... %d more", len(genres)-end)))
	}
	return sb.String()
}
