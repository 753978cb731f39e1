// Package snapshot stores game state as versioned key-value blobs.
//
// A game is saved as three independent blobs, one per state machine:
//
//	escape-room-game       player progress
//	escape-room-inventory  collected and used items
//	escape-room-journal    discovered clues
//
// The browser client saved the same blobs under family-escape-room-* keys;
// Decode falls back to those.
//
// Each blob is an envelope of the form {"version": N, "state": {...}}.
// Loading a blob written by an older version runs the registered migrations
// one step at a time until the state reaches the current version. A blob
// with a version newer than the running code is rejected with
// ErrFutureVersion rather than decoded partially.
//
// Transient UI state is never persisted.
package snapshot
