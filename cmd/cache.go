package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setsmith/internal/repositories"
	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// cacheRepo opens the cover cache, warning when it only lives in memory.
func (r *Runner) cacheRepo() (*repositories.CoverRepository, error) {
	if r.config.Cache.Path == "" || r.config.Cache.Path == ":memory:" {
		r.logger.Warn("cover cache is in memory; set cache.path in config.toml to keep covers between runs")
	}
	if _, err := r.coverSource(); err != nil {
		return nil, err
	}
	return r.covers, nil
}

// CacheStats reports the size of the cover cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.cacheRepo()
	if err != nil {
		return err
	}

	stats, err := repo.Stats()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	rows := [][]string{
		{"Path", r.config.Cache.Path},
		{"Covers", fmt.Sprintf("%d", stats.Covers)},
		{"Size", formatBytes(stats.Bytes)},
		{"Hits", fmt.Sprintf("%d", stats.Hits)},
	}
	return r.writePlain("%s\n", renderTable([]string{"", "Cover cache"}, rows, []columnAlignment{alignLeft, alignRight}))
}

// CacheList shows the most reused cached covers.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.cacheRepo()
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if n := cmd.Int("min-hits"); n > 0 {
		criteria["min_hits"] = int(n)
	}
	covers, err := repo.List(criteria)
	if err != nil {
		return err
	}
	if len(covers) == 0 {
		return r.writePlain("Cover cache is empty\n")
	}

	rows := make([][]string, len(covers))
	for i, c := range covers {
		rows[i] = []string{c.URL(), c.ContentType(), formatBytes(int64(len(c.Data()))), fmt.Sprintf("%d", c.Hits())}
	}
	headers := []string{"URL", "Type", "Size", "Hits"}
	return r.writePlain("%s\n", renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
}

// CacheClear empties the cover cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.cacheRepo()
	if err != nil {
		return err
	}

	n, err := repo.Clear()
	if err != nil {
		return err
	}
	r.logger.Info("cover cache cleared", "removed", n)
	return r.writePlain("✓ Removed %d cached covers\n", n)
}

// CacheMigrate rolls the cache schema back one version, or runs pending migrations.
func (r *Runner) CacheMigrate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.cacheRepo(); err != nil {
		return err
	}
	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(r.db); err != nil {
			return err
		}
		return r.writePlain("✓ Rolled back one migration\n")
	}
	if err := shared.RunMigrations(r.db); err != nil {
		return err
	}
	return r.writePlain("✓ Cover cache schema is up to date\n")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
