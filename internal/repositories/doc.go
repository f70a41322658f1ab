// Package repositories implements SQLite persistence for the cover cache.
//
// [CoverRepository] implements [models.Repository] for [models.CachedCover] and adds the
// URL lookup and hit counting the artwork loader needs. The cache database defaults to
// ":memory:", so cached covers last only as long as the process unless a file path is
// configured.
package repositories
