// Package reconcile coordinates asynchronous lookups against mutable view
// state.
//
// # Overview
//
// A Map holds one logical slot per key. Every lookup for a key starts with
// Begin, which stamps the attempt with a fresh generation and returns a
// Ticket. When the lookup settles, Finish applies the result only if the
// ticket still carries the key's newest generation; anything older is
// discarded silently. Slots keep their last successfully applied value even
// when a newer attempt fails, so a blip never erases data that was already
// on screen.
//
// This replaces per-call-site "is this still the request I care about"
// bookkeeping: callers never cancel anything, they simply let superseded
// results arrive and bounce off the generation check.
//
// # Concurrency
//
// Lookups typically run on background goroutines (bubbletea commands) while
// the UI reads slots from its update loop, so Map and Slot are safe for
// concurrent use. Keys are independent: an attempt that never settles parks
// its own slot in the loading state without affecting any other key.
package reconcile
