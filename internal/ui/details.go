package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setsmith/internal/artwork"
	"github.com/desertthunder/setsmith/internal/formatter"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
)

type detailField int

const (
	detailActions detailField = iota
	detailTitle
	detailBackground
	detailTitleColor
	detailFieldCount
)

// detailsScreen shows a created set and exports it. Its covers start loading as soon as
// the screen opens so an image export rarely has to wait.
type detailsScreen struct {
	ctx    context.Context
	cancel context.CancelFunc

	tracks   models.TrackList
	style    models.ExportStyle
	board    *artwork.Board
	progress chan artwork.ProgressUpdate
	loaded   int // progress updates received
	failed   int

	title      textinput.Model
	background textinput.Model
	titleColor textinput.Model
	focus      detailField
	exporting  bool
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	return in
}

// openDetails hands tracks to the renderer and starts loading their covers.
func (m *Model) openDetails(tracks models.TrackList) tea.Cmd {
	m.closeDetails()

	src := m.deps.Covers
	if src == nil {
		src = artwork.NewHTTPSource(nil)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	progress := make(chan artwork.ProgressUpdate, len(tracks)+1)
	board := artwork.NewBoard(ctx, tracks, src, artwork.Options{
		Timeout:   m.deps.Export.CoverTimeout(),
		RateLimit: m.deps.Export.CoverRateLimit,
		Logger:    m.logger,
		Progress:  progress,
	})

	style := models.StyleFromConfig(m.deps.Export)
	m.details = &detailsScreen{
		ctx:        ctx,
		cancel:     cancel,
		tracks:     tracks,
		style:      style,
		board:      board,
		progress:   progress,
		title:      newInput("Set title", "", 80),
		background: newInput("#ffffff", style.BackgroundColor, 7),
		titleColor: newInput("#000000", style.TitleColor, 7),
	}
	m.view = SetDetailsView
	return m.details.waitForProgress()
}

// closeDetails stops any cover loads still running.
func (m *Model) closeDetails() {
	if m.details == nil {
		return
	}
	m.details.cancel()
	m.details.board.Close()
	m.details = nil
}

func (d *detailsScreen) waitForProgress() tea.Cmd {
	if len(d.board.Covers()) == 0 {
		return nil
	}
	ctx, ch := d.ctx, d.progress
	return func() tea.Msg {
		select {
		case update := <-ch:
			return coverProgressMsg(update)
		case <-ctx.Done():
			return nil
		}
	}
}

func (d *detailsScreen) setFocus(f detailField) tea.Cmd {
	d.focus = (f + detailFieldCount) % detailFieldCount
	d.title.Blur()
	d.background.Blur()
	d.titleColor.Blur()

	switch d.focus {
	case detailTitle:
		return d.title.Focus()
	case detailBackground:
		return d.background.Focus()
	case detailTitleColor:
		return d.titleColor.Focus()
	}
	return nil
}

func (d *detailsScreen) exportText(dir string) tea.Cmd {
	tracks := d.tracks
	return func() tea.Msg {
		path, err := formatter.WriteTextExport(tracks, dir)
		return exportDoneMsg{kind: "text", path: path, err: err}
	}
}

func (d *detailsScreen) exportImage(dir string) tea.Cmd {
	ctx, tracks, style, board := d.ctx, d.tracks, d.style, d.board
	return func() tea.Msg {
		path, err := formatter.WriteImageExport(ctx, tracks, style, board, dir)
		return exportDoneMsg{kind: "image", path: path, err: err}
	}
}

func (m *Model) onCoverProgress(msg coverProgressMsg) (tea.Model, tea.Cmd) {
	d := m.details
	if d == nil {
		return m, nil
	}
	// Steps can arrive out of order, so count updates instead of trusting Step.
	d.loaded++
	if msg.Err != nil {
		d.failed++
	}
	if d.loaded >= msg.Total {
		return m, nil
	}
	return m, d.waitForProgress()
}

func (m *Model) onExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if m.details != nil {
		m.details.exporting = false
	}
	if msg.err != nil {
		m.logger.Warn("export failed", "kind", msg.kind, "error", msg.err)
		m.setStatus(shared.UserMessage(msg.err), msg.err)
		return m, nil
	}
	m.logger.Info("exported", "kind", msg.kind, "path", msg.path)
	m.setStatus(fmt.Sprintf("Saved %s", msg.path), nil)
	return m, nil
}

func (m *Model) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.details
	if d == nil {
		m.view = HomeView
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.closeDetails()
		m.create = nil
		m.view = HomeView
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, d.setFocus(d.focus + 1)
	case key.Matches(msg, m.keys.prev):
		return m, d.setFocus(d.focus - 1)
	}

	dir := m.deps.Export.OutputDir
	var cmd tea.Cmd
	switch d.focus {
	case detailActions:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, m.quit()
		case key.Matches(msg, m.keys.exportText):
			return m, d.exportText(dir)
		case key.Matches(msg, m.keys.exportImage):
			if d.exporting {
				return m, nil
			}
			if !d.style.HasTitle() {
				err := shared.NewValidationError("", "Title cannot be blank or just whitespace")
				m.setStatus(shared.UserMessage(err), err)
				return m, d.setFocus(detailTitle)
			}
			d.exporting = true
			m.setStatus("", nil)
			return m, tea.Batch(d.exportImage(dir), m.spinner.Tick)
		case key.Matches(msg, m.keys.bold):
			d.style.Bold = !d.style.Bold
		case key.Matches(msg, m.keys.textUp):
			d.style.TextSize++
		case key.Matches(msg, m.keys.textDown):
			d.style.TextSize--
		case key.Matches(msg, m.keys.coverUp):
			d.style.CoverSize += 10
		case key.Matches(msg, m.keys.coverDown):
			d.style.CoverSize -= 10
		}
		d.style = d.style.Clamp()

	case detailTitle:
		d.title, cmd = d.title.Update(msg)
		d.style.Title = d.title.Value()

	case detailBackground:
		d.background, cmd = d.background.Update(msg)
		d.style.BackgroundColor = d.background.Value()

	case detailTitleColor:
		d.titleColor, cmd = d.titleColor.Update(msg)
		d.style.TitleColor = d.titleColor.Value()
	}
	return m, cmd
}

func (m *Model) renderDetails() string {
	d := m.details
	if d == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.title.Render(fmt.Sprintf("Set Details (%d tracks)", len(d.tracks))))
	sb.WriteString("\n")

	visible := max(m.height-18, 3)
	for i, t := range d.tracks {
		if i == visible {
			sb.WriteString(styles.help.Render(fmt.Sprintf("... %d more", len(d.tracks)-visible)) + "\n")
			break
		}
		sb.WriteString(t.Line(i+1) + "\n")
	}

	label := func(f detailField, text string) string {
		if d.focus == f {
			return styles.focused.Width(12).Render("> " + text)
		}
		return styles.label.Render("  " + text)
	}

	sb.WriteString("\n" + label(detailTitle, "Title") + d.title.View())
	sb.WriteString("\n" + label(detailBackground, "Background") + d.background.View())
	sb.WriteString("\n" + label(detailTitleColor, "Title color") + d.titleColor.View())
	sb.WriteString("\n" + label(detailActions, "Style"))
	sb.WriteString(fmt.Sprintf("cover %dpx, text %dpx, bold %t", d.style.CoverSize, d.style.TextSize, d.style.Bold))

	total := len(d.board.Covers())
	covers := fmt.Sprintf("\n%s covers %d/%d", styles.label.Render("  Artwork"), d.loaded, total)
	if d.failed > 0 {
		covers += styles.warn.Render(fmt.Sprintf(" (%d unavailable)", d.failed))
	}
	sb.WriteString(covers)

	if d.exporting {
		sb.WriteString(fmt.Sprintf("\n\n%s Rendering image, waiting for covers...", m.spinner.View()))
	}
	sb.WriteString("\n\n" + styles.Status(m.status, m.statusErr))

	helpKeys := []key.Binding{m.keys.exportText, m.keys.exportImage, m.keys.bold, m.keys.textUp, m.keys.coverUp, m.keys.next, m.keys.back}
	sb.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return sb.String()
}
