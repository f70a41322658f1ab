// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI plays the part of the browser client:
//  1. [HomeView] : Session status, login and sign out
//  2. [CreateSetView] : Pick a playlist, filter by genre, set duration, name and visibility
//  3. [FavoritesView] : Build a playlist from top tracks over a time range
//  4. [SetDetailsView] : Review the set, adjust the export style and export text or image
//
// Network work is done by the workflow package; the model routes each workflow message back
// to the workflow that issued it and re-renders from its state. Cover progress flows through a
// channel from the artwork board, read one update per command.
//
// Text inputs take every printable key while focused, so single-letter bindings only act on
// the non-input fields. tab moves between fields, esc goes back and ctrl+c always quits.
package ui
