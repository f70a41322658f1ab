package models

import (
	"fmt"
	"time"
)

// CachedCover is a downloaded album cover kept in the cover cache.
type CachedCover struct {
	id          string
	url         string
	contentType string
	data        []byte
	hits        int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewCachedCover creates a cover record for url. The ID is assigned by the repository.
func NewCachedCover(url, contentType string, data []byte) *CachedCover {
	now := time.Now().UTC()
	return &CachedCover{
		url:         url,
		contentType: contentType,
		data:        data,
		createdAt:   now,
		updatedAt:   now,
	}
}

// RestoreCachedCover rebuilds a record read from storage.
func RestoreCachedCover(id, url, contentType string, data []byte, hits int, createdAt, updatedAt time.Time) *CachedCover {
	return &CachedCover{
		id:          id,
		url:         url,
		contentType: contentType,
		data:        data,
		hits:        hits,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (c *CachedCover) ID() string           { return c.id }
func (c *CachedCover) URL() string          { return c.url }
func (c *CachedCover) ContentType() string  { return c.contentType }
func (c *CachedCover) Data() []byte         { return c.data }
func (c *CachedCover) Hits() int            { return c.hits }
func (c *CachedCover) CreatedAt() time.Time { return c.createdAt }
func (c *CachedCover) UpdatedAt() time.Time { return c.updatedAt }

func (c *CachedCover) SetID(id string)          { c.id = id }
func (c *CachedCover) SetUpdatedAt(t time.Time) { c.updatedAt = t }
func (c *CachedCover) SetData(data []byte)      { c.data = data }
func (c *CachedCover) SetContentType(ct string) { c.contentType = ct }

// Validate checks required fields.
func (c *CachedCover) Validate() error {
	if c.url == "" {
		return fmt.Errorf("cover url is required")
	}
	if len(c.data) == 0 {
		return fmt.Errorf("cover data is empty")
	}
	return nil
}

var _ Model = (*CachedCover)(nil)
