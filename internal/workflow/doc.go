// Package workflow holds the screen-level state machines that drive the backend.
//
// [SetBuilder] and [Favorites] follow the bubbletea model: an operation updates local state
// and returns a [tea.Cmd] that performs the network call off the loop; the command's message
// is then applied with Update. All state changes therefore happen on the program loop and no
// locking is needed.
//
// Every workflow gets a process-wide id and every message it issues carries that id, so a
// screen that was closed and reopened never sees its predecessor's late responses.
// Genre fetches are also tagged with a generation number. Selecting another playlist bumps the
// generation, so a response for a playlist the user has moved away from is dropped. Submit
// is guarded by an in-flight flag: a second Submit before the first message arrives is a
// no-op.
//
// Authentication failures from any call invalidate the shared [shared.Session].
package workflow
