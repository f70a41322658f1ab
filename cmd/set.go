package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setsmith/internal/artwork"
	"github.com/desertthunder/setsmith/internal/formatter"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/desertthunder/setsmith/internal/workflow"
	"github.com/urfave/cli/v3"
)

// drive runs cmd and feeds every message it produces back through update until no
// command is left. It is the synchronous stand-in for a bubbletea program loop.
func drive(cmd tea.Cmd, update func(tea.Msg) tea.Cmd) {
	for cmd != nil {
		cmd = update(cmd())
	}
}

// SetCreate builds a set through the Set Builder workflow, prints it and runs any
// requested exports.
func (r *Runner) SetCreate(ctx context.Context, cmd *cli.Command) error {
	style := r.exportStyle(cmd)
	if cmd.Bool("image") && !style.HasTitle() {
		return shared.NewValidationError("title", "Title cannot be blank or just whitespace")
	}
	formats, err := parseFormats(cmd.StringSlice("export"))
	if err != nil {
		return err
	}
	visibility, err := models.ParseVisibility(cmd.String("visibility"))
	if err != nil {
		return err
	}

	b := workflow.NewSetBuilder(ctx, r.gateway, r.session, r.logger)
	drive(b.Init(), b.Update)
	if err := b.LoadErr(); err != nil {
		return err
	}

	id, err := resolvePlaylist(b.Playlists(), cmd.String("playlist"))
	if err != nil {
		return err
	}
	drive(b.SelectPlaylist(id), b.Update)

	if wanted := cmd.StringSlice("genre"); len(wanted) > 0 {
		if err := b.GenresErr(); err != nil {
			return err
		}
		b.SetUseGenres(true)
		for _, g := range wanted {
			genre, ok := matchGenre(b.Genres(), g)
			if !ok || b.IsGenreSelected(genre) {
				r.logger.Warn("genre not in playlist or already selected, skipping", "genre", g)
				continue
			}
			b.ToggleGenre(genre)
		}
	}
	b.SetDuration(cmd.String("duration"))
	b.SetPlaylistName(cmd.String("name"))
	b.SetVisibility(visibility)

	submit, err := b.Submit()
	if err != nil {
		return err
	}
	drive(submit, b.Update)
	if b.State() != workflow.Succeeded {
		return b.Err()
	}

	tracks := b.Result()
	r.logger.Info("set created", "status", b.Status(), "tracks", len(tracks))

	if cmd.Bool("json") {
		if err := r.writeJSON(tracks, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else if err := r.printSet(tracks); err != nil {
		return err
	}

	return r.exportSet(ctx, cmd, tracks, style, formats)
}

func (r *Runner) printSet(tracks models.TrackList) error {
	if len(tracks) == 0 {
		return r.writePlain("The set is empty\n")
	}
	rows := make([][]string, len(tracks))
	for i, t := range tracks {
		rows[i] = []string{fmt.Sprintf("%d", i+1), t.Artist, t.Name, t.Timestamp}
	}
	headers := []string{"#", "Artist", "Name", "Start"}
	return r.writePlain("%s\n", renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
}

func (r *Runner) exportSet(ctx context.Context, cmd *cli.Command, tracks models.TrackList, style models.ExportStyle, formats []formatter.Format) error {
	dir := cmd.String("output-dir")
	if dir == "" {
		dir = r.config.Export.OutputDir
	}

	for _, f := range formats {
		path, err := formatter.WriteExport(tracks, f, filepath.Join(dir, f.Filename()))
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", path)
	}

	if !cmd.Bool("image") {
		return nil
	}

	src, err := r.coverSource()
	if err != nil {
		return err
	}

	progress := make(chan artwork.ProgressUpdate, len(tracks)+1)
	board := artwork.NewBoard(ctx, tracks, src, artwork.Options{
		Timeout:   r.config.Export.CoverTimeout(),
		RateLimit: r.config.Export.CoverRateLimit,
		Logger:    r.logger,
		Progress:  progress,
	})
	defer board.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case u := <-progress:
				r.logger.Info("cover", "step", u.Step, "total", u.Total, "ok", u.Err == nil)
			case <-done:
				return
			}
		}
	}()

	path, err := formatter.WriteImageExport(ctx, tracks, style, board, filepath.Join(dir, formatter.ImageFilename))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Wrote %s\n", path)
}

// exportStyle merges style flags over the configured export defaults.
func (r *Runner) exportStyle(cmd *cli.Command) models.ExportStyle {
	style := models.StyleFromConfig(r.config.Export)
	if cmd.IsSet("background") {
		style.BackgroundColor = cmd.String("background")
	}
	if cmd.IsSet("title-color") {
		style.TitleColor = cmd.String("title-color")
	}
	if cmd.IsSet("bold") {
		style.Bold = cmd.Bool("bold")
	}
	if cmd.IsSet("cover-size") {
		style.CoverSize = int(cmd.Int("cover-size"))
	}
	if cmd.IsSet("text-size") {
		style.TextSize = int(cmd.Int("text-size"))
	}
	style.Title = cmd.String("title")

	return style.Clamp()
}

// matchGenre finds want in genres ignoring case and surrounding space, returning the
// backend's spelling.
func matchGenre(genres models.GenreSet, want string) (string, bool) {
	want = strings.TrimSpace(want)
	for _, g := range genres {
		if strings.EqualFold(g, want) {
			return g, true
		}
	}
	return "", false
}

func parseFormats(raw []string) ([]formatter.Format, error) {
	formats := make([]formatter.Format, 0, len(raw))
	for _, item := range raw {
		for part := range strings.SplitSeq(item, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := formatter.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// resolvePlaylist accepts a playlist id or an exact (case-insensitive) name.
func resolvePlaylist(playlists []models.PlaylistRef, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", shared.NewValidationError("playlist", "Please select a playlist")
	}
	for _, pl := range playlists {
		if pl.ID == ref {
			return pl.ID, nil
		}
	}
	for _, pl := range playlists {
		if strings.EqualFold(pl.Name, ref) {
			return pl.ID, nil
		}
	}
	return "", fmt.Errorf("%w: playlist %q", shared.ErrNotFound, ref)
}
