package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/workflow"
)

type favField int

const (
	favLimit favField = iota
	favRange
	favName
	favVisibility
	favFieldCount
)

// favoritesScreen is the form around a [workflow.Favorites].
type favoritesScreen struct {
	favorites *workflow.Favorites
	limit     textinput.Model
	name      textinput.Model
	rangeIdx  int
	focus     favField
}

func newFavoritesScreen(f *workflow.Favorites) *favoritesScreen {
	limit := textinput.New()
	limit.Placeholder = fmt.Sprintf("%d", workflow.DefaultFavoritesLimit)
	limit.CharLimit = 3

	name := textinput.New()
	name.Placeholder = "My Favorites"
	name.CharLimit = 100

	return &favoritesScreen{
		favorites: f,
		limit:     limit,
		name:      name,
		rangeIdx:  slices.Index(models.TimeRanges, workflow.DefaultTimeRange),
	}
}

func (s *favoritesScreen) focusCmd() tea.Cmd {
	s.limit.Blur()
	s.name.Blur()
	switch s.focus {
	case favLimit:
		return s.limit.Focus()
	case favName:
		return s.name.Focus()
	}
	return nil
}

func (s *favoritesScreen) setFocus(f favField) tea.Cmd {
	s.focus = (f + favFieldCount) % favFieldCount
	return s.focusCmd()
}

func (s *favoritesScreen) cycleRange(delta int) {
	n := len(models.TimeRanges)
	s.rangeIdx = (s.rangeIdx + delta + n) % n
	s.favorites.SetRange(string(models.TimeRanges[s.rangeIdx]))
}

func (m *Model) submitFavorites() (tea.Model, tea.Cmd) {
	f := m.favorites.favorites
	cmd, err := f.Submit()
	if err != nil {
		m.setStatus(f.Status(), err)
		return m, nil
	}
	if cmd == nil {
		return m, nil
	}
	m.setStatus("", nil)
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) updateFavorites(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.favorites
	if s == nil {
		m.view = HomeView
		return m, nil
	}
	if s.favorites.InFlight() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.favorites = nil
		m.view = HomeView
		m.setStatus("", nil)
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m.submitFavorites()
	case key.Matches(msg, m.keys.next):
		return m, s.setFocus(s.focus + 1)
	case key.Matches(msg, m.keys.prev):
		return m, s.setFocus(s.focus - 1)
	}

	var cmd tea.Cmd
	switch s.focus {
	case favLimit:
		if key.Matches(msg, m.keys.enter) {
			return m, s.setFocus(favRange)
		}
		s.limit, cmd = s.limit.Update(msg)
		s.favorites.SetLimit(s.limit.Value())

	case favRange:
		switch msg.String() {
		case "left":
			s.cycleRange(-1)
		case "right", " ":
			s.cycleRange(1)
		case "enter":
			return m, s.setFocus(favName)
		case "q":
			return m, m.quit()
		}

	case favName:
		if key.Matches(msg, m.keys.enter) {
			return m.submitFavorites()
		}
		s.name, cmd = s.name.Update(msg)
		s.favorites.SetPlaylistName(s.name.Value())

	case favVisibility:
		switch {
		case key.Matches(msg, m.keys.visibility), key.Matches(msg, m.keys.toggle):
			if s.favorites.Visibility() == models.Private {
				s.favorites.SetVisibility(models.Public)
			} else {
				s.favorites.SetVisibility(models.Private)
			}
		case key.Matches(msg, m.keys.enter):
			return m.submitFavorites()
		case key.Matches(msg, m.keys.quit):
			return m, m.quit()
		}
	}
	return m, cmd
}

// onFavoritesMsg goes home once the playlist exists.
func (m *Model) onFavoritesMsg(msg workflow.FavoritesCreatedMsg) (tea.Model, tea.Cmd) {
	s := m.favorites
	if s == nil || msg.Owner != s.favorites.ID() {
		m.logger.Debug("dropping favorites result for a closed screen")
		return m, nil
	}

	cmd := s.favorites.Update(msg)
	if m.expired() {
		return m, nil
	}

	if s.favorites.Done() {
		m.favorites = nil
		m.view = HomeView
		m.setStatus(fmt.Sprintf("Favorites playlist created (%s)", s.favorites.Status()), nil)
		return m, cmd
	}
	if err := s.favorites.Err(); err != nil {
		m.setStatus(s.favorites.Status(), err)
	}
	return m, cmd
}

func (m *Model) renderFavorites() string {
	s := m.favorites
	if s == nil {
		return ""
	}

	label := func(f favField, text string) string {
		if s.focus == f {
			return styles.focused.Width(12).Render("> " + text)
		}
		return styles.label.Render("  " + text)
	}

	var sb strings.Builder
	sb.WriteString(styles.title.Render("Favorites Playlist"))
	sb.WriteString("\n" + label(favLimit, "Songs") + s.limit.View())
	sb.WriteString(styles.help.Render(fmt.Sprintf("  (1-%d, default %d)", workflow.MaxFavoritesLimit, workflow.DefaultFavoritesLimit)))
	sb.WriteString("\n" + label(favRange, "Range") + models.TimeRanges[s.rangeIdx].Label())
	sb.WriteString("\n" + label(favName, "Name") + s.name.View())
	sb.WriteString("\n" + label(favVisibility, "Visibility") + s.favorites.Visibility().String())

	if s.favorites.InFlight() {
		sb.WriteString("\n\n" + m.spinner.View() + " Creating playlist...")
	}
	sb.WriteString("\n\n" + styles.Status(m.status, m.statusErr))

	helpKeys := []key.Binding{m.keys.next, m.keys.visibility, m.keys.submit, m.keys.back}
	sb.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return sb.String()
}
