// Package ui provides the terminal user interface for deckhand.
//
// # Architecture Overview
//
// The UI is built on Bubble Tea's model-update-view loop. A single root
// Model owns the session-aware location, the active view and every
// in-flight fetch; all mutation happens inside Update, and everything
// asynchronous (HTTP calls, toast timers, log refreshes) runs as a
// tea.Cmd that reports back with a typed message.
//
// # Package Structure
//
// The package is organized into focused modules:
//
//   - app.go: Root model, routing, update loop, and the Run function
//   - login.go: Sign-in and invite-code registration form
//   - home.go: Deck list view
//   - deck.go: Single-deck view with card art lookup
//   - profile.go: Preferences, password change, and invite keys
//   - toasts.go: Notification stack and its timer lifecycle
//   - debuglog.go: Log overlay that tails the client's own log file
//   - theme.go: Dark and light palettes and prebuilt styles
//
// # View Resolution
//
// Every view change goes through route.Resolve: the stored location and
// the current session state map to exactly one view, and redirects are
// collapsed before anything renders. The same resolution runs again when
// the session changes out from under the UI (sign-out in another code
// path, an expired token), so a view that requires a session can never
// stay on screen without one.
//
// # Fetch Reconciliation
//
// Server resources are held in reconcile slots that live on the root
// Model for the life of the program. Each fetch takes a generation
// ticket at start and redeems it at completion; a result whose ticket
// has been superseded is dropped rather than applied. Slots survive
// view switches so that re-entering a view cannot reset the counter a
// stale result is checked against.
//
// # Notifications
//
// Toasts queue oldest-first and dismiss on a per-toast timer, with a
// short grace period for the exit state before removal. Manual
// dismissal and timer expiry share one guarded transition, so the
// leftover timer of an early-dismissed toast is a no-op.
//
// # Key Bindings
//
//   - j/k: Move selection (list views)
//   - enter: Open the selected deck / submit the focused form
//   - tab: Next form field
//   - r: Refresh the current view's data
//   - p: Profile
//   - esc: Back to the deck list
//   - x: Dismiss the oldest notification
//   - T or Ctrl+T: Toggle theme
//   - Ctrl+L: Log overlay
//   - Ctrl+X: Sign out
//   - ?: Help
//   - q or Ctrl+C: Quit
//
// Views with text fields (login, profile) keep printable keys for
// typing; only the control-key chords above stay global there.
package ui
