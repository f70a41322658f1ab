package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
)

// Gateway is the single point of contact with the backend.
//
// Implementations hold no per-call state and can be shared by any number of workflows.
type Gateway interface {
	// CheckAuth asks the backend whether the session is logged in.
	CheckAuth(ctx context.Context) (bool, error)

	// LoginURL is where the user starts the backend's OAuth flow.
	LoginURL() string

	// SignOut clears the backend session.
	SignOut(ctx context.Context) error

	// ListUserPlaylists returns the user's playlists in backend order.
	ListUserPlaylists(ctx context.Context) ([]models.PlaylistRef, error)

	// ListGenresForPlaylist returns the sorted, deduplicated genres of a playlist's artists.
	ListGenresForPlaylist(ctx context.Context, playlistID string) (models.GenreSet, error)

	// CreateSet asks the backend to build a set playlist.
	CreateSet(ctx context.Context, req models.SetRequest) (*SetResult, error)

	// CreateFavoritesSet asks the backend to build a playlist from the user's top tracks.
	CreateFavoritesSet(ctx context.Context, req models.FavoritesRequest) (string, error)
}

// SetResult is the backend's answer to a create-set request.
type SetResult struct {
	Status     string
	PlaylistID string
	Tracks     models.TrackList
}

type checkAuthResponse struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	Error      string `json:"error,omitempty"`
}

type playlistsResponse struct {
	Items []models.PlaylistRef `json:"items"`
}

type genresResponse struct {
	Genres []string `json:"genres"`
}

// createSetPayload is the create-set body. Genres and Duration marshal as null when unset.
type createSetPayload struct {
	Genres             *string `json:"genres"`
	PlaylistName       string  `json:"playlist_name"`
	PlaylistVisibility int     `json:"playlist_visibility"`
	SelectedPlaylistID string  `json:"selected_playlist_id"`
	Duration           *int    `json:"duration"`
}

type createSetResponse struct {
	Status     string         `json:"status"`
	PlaylistID string         `json:"playlist_id"`
	SetDetails []models.Track `json:"set_details"`
}

type favoritesPayload struct {
	Limit              int    `json:"limit"`
	Range              string `json:"range"`
	PlaylistName       string `json:"playlist_name"`
	PlaylistVisibility int    `json:"playlist_visibility"`
}

type favoritesResponse struct {
	Status     string `json:"status"`
	PlaylistID string `json:"playlist_id"`
}

// CatalogService implements [Gateway] over an [APIService].
type CatalogService struct {
	api *APIService
}

var _ Gateway = (*CatalogService)(nil)

// NewCatalogService creates a gateway backed by api.
func NewCatalogService(api *APIService) *CatalogService {
	return &CatalogService{api: api}
}

func (s *CatalogService) LoginURL() string {
	return s.api.URL("/login")
}

func (s *CatalogService) CheckAuth(ctx context.Context) (bool, error) {
	var out checkAuthResponse
	if err := s.api.GetJSON(ctx, "/check-auth", &out); err != nil {
		return false, err
	}
	return out.IsLoggedIn, nil
}

// SignOut treats the backend's redirect home as success.
func (s *CatalogService) SignOut(ctx context.Context) error {
	resp, err := s.api.Get(ctx, "/sign_out")
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 && !isLoginRedirect(resp.Headers.Get("Location")) {
		return nil
	}
	return resp.Err()
}

func (s *CatalogService) ListUserPlaylists(ctx context.Context) ([]models.PlaylistRef, error) {
	var out playlistsResponse
	if err := s.api.GetJSON(ctx, "/user-playlists", &out); err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	return out.Items, nil
}

func (s *CatalogService) ListGenresForPlaylist(ctx context.Context, playlistID string) (models.GenreSet, error) {
	if playlistID == "" {
		return nil, shared.NewValidationError("playlist", "Please select a playlist")
	}

	var out genresResponse
	if err := s.api.GetJSON(ctx, "/playlist-genres/"+url.PathEscape(playlistID), &out); err != nil {
		return nil, fmt.Errorf("list genres for %s: %w", playlistID, err)
	}
	return models.NewGenreSet(out.Genres), nil
}

// CreateSet validates req locally before any network work.
func (s *CatalogService) CreateSet(ctx context.Context, req models.SetRequest) (*SetResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out createSetResponse
	if err := s.api.PostJSON(ctx, "/create-set", newCreateSetPayload(req), &out); err != nil {
		return nil, fmt.Errorf("create set: %w", err)
	}
	if out.SetDetails == nil {
		out.SetDetails = []models.Track{}
	}

	return &SetResult{
		Status:     out.Status,
		PlaylistID: out.PlaylistID,
		Tracks:     models.TrackList(out.SetDetails),
	}, nil
}

func (s *CatalogService) CreateFavoritesSet(ctx context.Context, req models.FavoritesRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	payload := favoritesPayload{
		Limit:              req.Limit,
		Range:              string(req.Range),
		PlaylistName:       req.PlaylistName,
		PlaylistVisibility: int(req.Visibility),
	}

	var out favoritesResponse
	if err := s.api.PostJSON(ctx, "/favorites-playlist", payload, &out); err != nil {
		return "", fmt.Errorf("create favorites set: %w", err)
	}
	return out.Status, nil
}

// newCreateSetPayload joins genres with commas, which is how the backend splits them.
func newCreateSetPayload(req models.SetRequest) createSetPayload {
	p := createSetPayload{
		PlaylistName:       req.PlaylistName,
		PlaylistVisibility: int(req.Visibility),
		Duration:           req.DurationMinutes,
	}
	if req.SourcePlaylistID != nil {
		p.SelectedPlaylistID = *req.SourcePlaylistID
	}
	if req.Genres != nil {
		joined := strings.Join(req.Genres, ",")
		p.Genres = &joined
	}
	return p
}
