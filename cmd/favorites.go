package main

import (
	"context"

	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/workflow"
	"github.com/urfave/cli/v3"
)

// FavoritesCreate builds a playlist from the user's top tracks.
func (r *Runner) FavoritesCreate(ctx context.Context, cmd *cli.Command) error {
	visibility, err := models.ParseVisibility(cmd.String("visibility"))
	if err != nil {
		return err
	}

	f := workflow.NewFavorites(ctx, r.gateway, r.session, r.logger)
	f.SetLimit(cmd.String("limit"))
	f.SetRange(cmd.String("range"))
	f.SetPlaylistName(cmd.String("name"))
	f.SetVisibility(visibility)

	submit, err := f.Submit()
	if err != nil {
		return err
	}
	drive(submit, f.Update)
	if !f.Done() {
		return f.Err()
	}

	r.logger.Info("favorites playlist created", "limit", f.Limit(), "range", f.RangeInput())
	return r.writePlain("✓ %s\n", f.Status())
}
