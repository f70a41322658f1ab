// package formatter exports a set's track list as plain text, CSV, JSON or a PNG image
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
)

const (
	TextFilename  = "setlist.txt"
	ImageFilename = "setlist.png"
)

// Format is a track list export format.
type Format string

const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts txt, csv and json (case-insensitive); "text" is an alias of txt.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	case "text", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Filename is the default file name for f.
func (f Format) Filename() string {
	return "setlist." + string(f)
}

// ExportText renders one "{i}. {artist} - {name} ({timestamp})" line per track, numbered
// from 1 and joined with newlines. There is no trailing newline; an empty list is empty.
func ExportText(tracks models.TrackList) []byte {
	lines := make([]string, len(tracks))
	for i, t := range tracks {
		lines[i] = t.Line(i + 1)
	}
	return []byte(strings.Join(lines, "\n"))
}

// ExportCSV converts tracks to CSV with columns: Position, Artist, Name, Timestamp, AlbumCover
func ExportCSV(tracks models.TrackList) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Position", "Artist", "Name", "Timestamp", "AlbumCover"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, t := range tracks {
		record := []string{strconv.Itoa(i + 1), t.Artist, t.Name, t.Timestamp, t.AlbumCoverURL}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportJSON converts tracks to indented JSON using the backend's field names.
func ExportJSON(tracks models.TrackList) ([]byte, error) {
	if tracks == nil {
		tracks = models.TrackList{}
	}
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tracks: %w", err)
	}
	return data, nil
}

// Export renders tracks in format f.
func Export(tracks models.TrackList, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportCSV(tracks)
	case FormatJSON:
		return ExportJSON(tracks)
	default:
		return ExportText(tracks), nil
	}
}

// WriteTextExport writes the text export as UTF-8.
//
// Defaults to setlist.txt as the filename.
func WriteTextExport(tracks models.TrackList, path string) (string, error) {
	return WriteExport(tracks, FormatText, path)
}

// WriteExport writes tracks in format f to path, defaulting to setlist.{ext}.
// When path is a directory the default name is placed inside it.
func WriteExport(tracks models.TrackList, f Format, path string) (string, error) {
	path = resolvePath(path, f.Filename())

	data, err := Export(tracks, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func resolvePath(path, name string) string {
	if path == "" {
		return name
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, name)
	}
	return path
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
