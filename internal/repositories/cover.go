package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
)

// CoverRepository implements [models.Repository] for [models.CachedCover] persistence.
type CoverRepository struct {
	db *sql.DB
}

var _ models.URLStore[*models.CachedCover] = (*CoverRepository)(nil)

// CacheStats summarizes the cover cache.
type CacheStats struct {
	Covers int   `json:"covers"`
	Bytes  int64 `json:"bytes"`
	Hits   int   `json:"hits"`
}

// NewCoverRepository creates a new [CoverRepository] with the given database connection
func NewCoverRepository(db *sql.DB) *CoverRepository {
	return &CoverRepository{db: db}
}

const coverColumns = "id, url, content_type, data, hits, created_at, updated_at"

// Create inserts a cover with a generated ID.
//
// A cover whose URL is already cached is not an error; the existing row is kept.
func (r *CoverRepository) Create(cover *models.CachedCover) error {
	cover.SetID(shared.GenerateID())

	if err := cover.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO covers (id, url, content_type, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, cover.ID(), cover.URL(), cover.ContentType(), cover.Data(), cover.CreatedAt(), cover.UpdatedAt())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to insert cover: %w", err)
	}

	return nil
}

// Get retrieves a cover by ID
func (r *CoverRepository) Get(id string) (*models.CachedCover, error) {
	row := r.db.QueryRow("SELECT "+coverColumns+" FROM covers WHERE id = ?", id)
	cover, err := scanCover(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: cover %s", shared.ErrNotFound, id)
	}
	return cover, err
}

// GetByURL retrieves a cover by its image URL
func (r *CoverRepository) GetByURL(url string) (*models.CachedCover, error) {
	row := r.db.QueryRow("SELECT "+coverColumns+" FROM covers WHERE url = ?", url)
	cover, err := scanCover(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: cover for %s", shared.ErrNotFound, url)
	}
	return cover, err
}

// Update replaces the stored image data of a cover
func (r *CoverRepository) Update(cover *models.CachedCover) error {
	if err := cover.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	cover.SetUpdatedAt(now)

	result, err := r.db.Exec(
		"UPDATE covers SET content_type = ?, data = ?, updated_at = ? WHERE id = ?",
		cover.ContentType(), cover.Data(), now, cover.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update cover: %w", err)
	}
	return expectOne(result, cover.ID())
}

// RecordHit increments the reuse counter of a cover
func (r *CoverRepository) RecordHit(id string) error {
	result, err := r.db.Exec("UPDATE covers SET hits = hits + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	return expectOne(result, id)
}

// Delete removes a cover by ID
func (r *CoverRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM covers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete cover: %w", err)
	}
	return expectOne(result, id)
}

// List retrieves covers matching the given criteria, most reused first.
//
// Supported criteria: "min_hits" (int), "content_type" (string), "limit" (int).
func (r *CoverRepository) List(criteria map[string]any) ([]*models.CachedCover, error) {
	query := "SELECT " + coverColumns + " FROM covers WHERE 1 = 1"
	args := []any{}

	if minHits, ok := criteria["min_hits"].(int); ok {
		query += " AND hits >= ?"
		args = append(args, minHits)
	}
	if ct, ok := criteria["content_type"].(string); ok && ct != "" {
		query += " AND content_type = ?"
		args = append(args, ct)
	}

	query += " ORDER BY hits DESC, created_at ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query covers: %w", err)
	}
	defer rows.Close()

	var covers []*models.CachedCover
	for rows.Next() {
		cover, err := scanCover(rows)
		if err != nil {
			return nil, err
		}
		covers = append(covers, cover)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return covers, nil
}

// Stats reports how many covers are cached, their total size and total reuse.
func (r *CoverRepository) Stats() (*CacheStats, error) {
	var stats CacheStats
	err := r.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(data)), 0), COALESCE(SUM(hits), 0) FROM covers",
	).Scan(&stats.Covers, &stats.Bytes, &stats.Hits)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return &stats, nil
}

// Clear removes every cached cover and returns how many were removed.
func (r *CoverRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM covers")
	if err != nil {
		return 0, fmt.Errorf("failed to clear covers: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCover(s scanner) (*models.CachedCover, error) {
	var (
		id          string
		url         string
		contentType string
		data        []byte
		hits        int
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := s.Scan(&id, &url, &contentType, &data, &hits, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cover: %w", err)
	}

	return models.RestoreCachedCover(id, url, contentType, data, hits, createdAt, updatedAt), nil
}

func expectOne(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: cover %s", shared.ErrNotFound, id)
	}
	return nil
}
