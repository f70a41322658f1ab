package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/setsmith/internal/shared"
)

// PlaylistRef identifies a playlist the user can build a set from.
type PlaylistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GenreSet is the sorted, deduplicated list of genres found in one playlist.
type GenreSet []string

// NewGenreSet sorts raw lexicographically and drops duplicates and empty entries.
func NewGenreSet(raw []string) GenreSet {
	set := make(GenreSet, 0, len(raw))
	for _, g := range raw {
		if g != "" {
			set = append(set, g)
		}
	}
	slices.Sort(set)
	return slices.Compact(set)
}

// Contains reports whether g is in the set.
func (s GenreSet) Contains(g string) bool {
	_, found := slices.BinarySearch(s, g)
	return found
}

// Visibility of the playlist created on Spotify.
type Visibility int

const (
	Public Visibility = iota + 1
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

// Valid reports whether v is one of the enumerated values.
func (v Visibility) Valid() bool { return v == Public || v == Private }

// ParseVisibility accepts "public"/"private" (any case) or the wire values "1"/"2".
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public", "1", "":
		return Public, nil
	case "private", "2":
		return Private, nil
	default:
		return 0, shared.NewValidationError("visibility", fmt.Sprintf("unknown visibility %q", s))
	}
}

// TimeRange selects the window of listening history used for a favorites set.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// TimeRanges lists the valid ranges in display order.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// Label describes the range the way the picker shows it.
func (r TimeRange) Label() string {
	switch r {
	case ShortTerm:
		return "Short-term (4 weeks)"
	case MediumTerm:
		return "Medium-term (6 months)"
	case LongTerm:
		return "Long-term (lifetime)"
	default:
		return string(r)
	}
}

// ParseTimeRange rejects anything but the three enumerated values.
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(strings.TrimSpace(s))
	if slices.Contains(TimeRanges, r) {
		return r, nil
	}
	return "", shared.NewValidationError("range", fmt.Sprintf("time range must be one of short_term, medium_term, long_term (got %q)", s))
}

// SetRequest is a Set Builder submission.
//
// Genres is nil unless genre filtering was opted into. DurationMinutes is nil or positive.
type SetRequest struct {
	SourcePlaylistID *string
	Genres           []string
	PlaylistName     string
	Visibility       Visibility
	DurationMinutes  *int
}

// Validate checks the request before it is sent.
func (r SetRequest) Validate() error {
	if r.SourcePlaylistID == nil || *r.SourcePlaylistID == "" {
		return shared.NewValidationError("playlist", "Please select a playlist")
	}
	if r.DurationMinutes != nil && *r.DurationMinutes <= 0 {
		return shared.NewValidationError("duration", "duration must be a positive number of minutes")
	}
	if !r.Visibility.Valid() {
		return shared.NewValidationError("visibility", "unknown visibility")
	}
	return nil
}

// FavoritesRequest is a Favorites submission.
type FavoritesRequest struct {
	Limit        int
	Range        TimeRange
	PlaylistName string
	Visibility   Visibility
}

// Validate checks the request before it is sent.
func (r FavoritesRequest) Validate() error {
	if r.Limit <= 0 {
		return shared.NewValidationError("limit", "number of songs must be a positive integer")
	}
	if _, err := ParseTimeRange(string(r.Range)); err != nil {
		return err
	}
	if !r.Visibility.Valid() {
		return shared.NewValidationError("visibility", "unknown visibility")
	}
	return nil
}
