package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setsmith/internal/shared"
)

// Track is one entry of a generated set.
type Track struct {
	Artist        string `json:"artist"`
	Name          string `json:"name"`
	Timestamp     string `json:"timestamp"`
	AlbumCoverURL string `json:"album_cover"`
}

// Line renders the track at 1-based position pos.
func (t Track) Line(pos int) string {
	return fmt.Sprintf("%d. %s - %s (%s)", pos, t.Artist, t.Name, t.Timestamp)
}

// TrackList is a generated set in play order. It is read-only once handed to the renderer.
type TrackList []Track

// CoverURLs returns the distinct non-empty cover URLs in first-seen order.
func (l TrackList) CoverURLs() []string {
	seen := make(map[string]struct{}, len(l))
	urls := make([]string, 0, len(l))
	for _, t := range l {
		if t.AlbumCoverURL == "" {
			continue
		}
		if _, ok := seen[t.AlbumCoverURL]; ok {
			continue
		}
		seen[t.AlbumCoverURL] = struct{}{}
		urls = append(urls, t.AlbumCoverURL)
	}
	return urls
}

const (
	MinCoverSize = 50
	MaxCoverSize = 200
	MinTextSize  = 10
	MaxTextSize  = 30
)

// ExportStyle holds presentational settings for the image export. It never affects track content.
type ExportStyle struct {
	BackgroundColor string
	TitleColor      string
	Bold            bool
	CoverSize       int
	TextSize        int
	Title           string
}

// DefaultExportStyle matches the set details screen defaults.
func DefaultExportStyle() ExportStyle {
	return ExportStyle{
		BackgroundColor: "#ffffff",
		TitleColor:      "#000000",
		CoverSize:       100,
		TextSize:        20,
	}
}

// StyleFromConfig starts from the configured export defaults, falling back per field.
func StyleFromConfig(cfg shared.ExportConfig) ExportStyle {
	style := DefaultExportStyle()
	if cfg.BackgroundColor != "" {
		style.BackgroundColor = cfg.BackgroundColor
	}
	if cfg.TitleColor != "" {
		style.TitleColor = cfg.TitleColor
	}
	if cfg.CoverSize > 0 {
		style.CoverSize = cfg.CoverSize
	}
	if cfg.TextSize > 0 {
		style.TextSize = cfg.TextSize
	}
	style.Bold = cfg.Bold
	return style.Clamp()
}

// Clamp returns a copy with sizes forced into their allowed ranges.
func (s ExportStyle) Clamp() ExportStyle {
	s.CoverSize = clamp(s.CoverSize, MinCoverSize, MaxCoverSize)
	s.TextSize = clamp(s.TextSize, MinTextSize, MaxTextSize)
	return s
}

// HasTitle reports whether the title is non-blank.
func (s ExportStyle) HasTitle() bool {
	return strings.TrimSpace(s.Title) != ""
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
