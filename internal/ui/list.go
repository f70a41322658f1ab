package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/setsmith/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = menuItem{}
)

// playlistItem wraps [models.PlaylistRef] to implement [list.Item].
type playlistItem struct {
	playlist models.PlaylistRef
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string { return i.playlist.ID }

type menuAction int

const (
	actionLogin menuAction = iota
	actionCreateSet
	actionFavorites
	actionSignOut
)

// menuItem is one entry of the home menu.
type menuItem struct {
	title  string
	desc   string
	action menuAction
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

func newPlaylistList(playlists []models.PlaylistRef, width, height int) list.Model {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl}
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Choose a playlist"
	l.SetShowHelp(false)
	return l
}

func menuItems(loggedIn bool) []list.Item {
	if !loggedIn {
		return []list.Item{
			menuItem{title: "Log in", desc: "Sign in with Spotify through the backend", action: actionLogin},
		}
	}
	return []list.Item{
		menuItem{title: "Create a set", desc: "Build a set from one of your playlists", action: actionCreateSet},
		menuItem{title: "Favorites playlist", desc: "Make a playlist from your top tracks", action: actionFavorites},
		menuItem{title: "Sign out", desc: "End the backend session", action: actionSignOut},
	}
}

func newMenu(loggedIn bool, width, height int) list.Model {
	l := list.New(menuItems(loggedIn), list.NewDefaultDelegate(), width, height)
	l.Title = "SetSmith"
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}
