package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists the playlists a set can be built from.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.gateway.ListUserPlaylists(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("fetched playlists", "count", len(playlists))

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}
	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}

	rows := make([][]string, len(playlists))
	for i, pl := range playlists {
		rows[i] = []string{fmt.Sprintf("%d", i+1), pl.Name, pl.ID}
	}
	return r.writePlain("%s\n", renderTable([]string{"#", "Name", "ID"}, rows, []columnAlignment{alignRight}))
}

// Genres prints the genres found in one playlist.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if shared.IsBlank(id) {
		return fmt.Errorf("%w: --id", shared.ErrMissingArgument)
	}

	genres, err := r.gateway.ListGenresForPlaylist(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}
	if len(genres) == 0 {
		return r.writePlain("No genres found for %s\n", id)
	}
	for _, g := range genres {
		r.writePlain("%s\n", g)
	}
	return nil
}
