// Package models defines the domain types of the set construction and export pipeline.
//
// Value types handed between components:
//   - [PlaylistRef] : a source playlist offered for selection
//   - [GenreSet] : sorted, deduplicated genres of one playlist
//   - [SetRequest] / [FavoritesRequest] : validated submissions for the two workflows
//   - [Track] / [TrackList] : the generated set, in play order
//   - [ExportStyle] : presentational state for the image export
//
// Persistent entities implement [Model] and are stored through a [Repository]; the only
// one is [CachedCover], the cover art cache.
package models
