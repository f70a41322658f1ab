// Package artwork loads album covers for a set and lets the renderer wait for them.
//
// A [Board] is created when a track list is handed to the renderer. It starts loading every
// distinct cover URL right away through a small worker pool, paced by a rate limiter, and
// each load has its own timeout.
//
// Every [Cover] completes exactly once, either loaded or failed. A failed cover still counts
// as complete so nothing waiting on it can hang; the renderer draws a placeholder for it.
//
// [Barrier] is the all-of join the renderer uses before rasterizing: it counts the covers
// that were still pending at registration and releases when the count reaches zero.
package artwork
