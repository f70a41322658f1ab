package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/desertthunder/setsmith/internal/workflow"
)

func (m *Model) checkAuth() tea.Cmd {
	ctx, gw := m.ctx, m.deps.Gateway
	return func() tea.Msg {
		ok, err := gw.CheckAuth(ctx)
		return authCheckedMsg{loggedIn: ok, err: err}
	}
}

func (m *Model) login() tea.Cmd {
	ctx, login := m.ctx, m.deps.Login
	return func() tea.Msg {
		gw, err := login(ctx)
		return loginDoneMsg{gateway: gw, err: err}
	}
}

func (m *Model) signOut() tea.Cmd {
	ctx, gw := m.ctx, m.deps.Gateway
	return func() tea.Msg {
		return signedOutMsg{err: gw.SignOut(ctx)}
	}
}

func (m *Model) onAuthChecked(msg authCheckedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.authChecked = true
	if msg.err != nil {
		m.logger.Warn("auth check failed", "error", msg.err)
		m.deps.Session.Start(false)
		m.setStatus(shared.UserMessage(msg.err), msg.err)
	} else {
		m.deps.Session.Start(msg.loggedIn)
		m.setStatus("", nil)
	}
	m.menu.SetItems(menuItems(m.deps.Session.Valid()))
	return m, nil
}

func (m *Model) onLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.busy = false
		m.logger.Warn("login failed", "error", msg.err)
		m.setStatus(shared.UserMessage(msg.err), msg.err)
		return m, nil
	}
	if msg.gateway != nil {
		m.deps.Gateway = msg.gateway
	}
	return m, m.checkAuth()
}

func (m *Model) onSignedOut(msg signedOutMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.logger.Warn("sign out failed", "error", msg.err)
		m.setStatus(shared.UserMessage(msg.err), msg.err)
		return m, nil
	}
	m.deps.Session.End()
	m.menu.SetItems(menuItems(false))
	m.setStatus("Signed out", nil)
	return m, nil
}

func (m *Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		if key.Matches(msg, m.keys.quit) {
			return m, m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.refresh):
		m.busy = true
		return m, tea.Batch(m.checkAuth(), m.spinner.Tick)
	case key.Matches(msg, m.keys.enter):
		item, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		return m.runMenu(item.action)
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) runMenu(action menuAction) (tea.Model, tea.Cmd) {
	m.setStatus("", nil)

	switch action {
	case actionLogin:
		if m.deps.Login == nil {
			m.setStatus(fmt.Sprintf("Log in at %s, then press r", m.deps.Gateway.LoginURL()), nil)
			return m, nil
		}
		m.busy = true
		m.setStatus("Finish signing in in your browser...", nil)
		return m, tea.Batch(m.login(), m.spinner.Tick)

	case actionCreateSet:
		b := workflow.NewSetBuilder(m.ctx, m.deps.Gateway, m.deps.Session, m.logger)
		m.create = newCreateSetScreen(b, max(m.width-4, 20), max(m.height-18, 5))
		m.view = CreateSetView
		return m, tea.Batch(b.Init(), m.spinner.Tick)

	case actionFavorites:
		f := workflow.NewFavorites(m.ctx, m.deps.Gateway, m.deps.Session, m.logger)
		m.favorites = newFavoritesScreen(f)
		m.view = FavoritesView
		return m, m.favorites.focusCmd()

	case actionSignOut:
		m.busy = true
		return m, tea.Batch(m.signOut(), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) renderHome() string {
	var body string
	switch {
	case !m.authChecked:
		body = fmt.Sprintf("%s Checking session...", m.spinner.View())
	case m.busy:
		body = fmt.Sprintf("%s\n\n%s Working...", m.menu.View(), m.spinner.View())
	default:
		body = m.menu.View()
	}

	auth := styles.warn.Render("Not logged in")
	if m.deps.Session.Valid() {
		auth = styles.ok.Render("✓ Logged in")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", body, auth, styles.Status(m.status, m.statusErr), helpView)
}
