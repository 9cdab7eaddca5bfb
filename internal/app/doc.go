// Package app provides the orchestration layer for the deckhand application.
//
// # Overview
//
// This package wires together configuration, logging, the session store, the
// API client, and the UI to create the complete deckhand TUI experience. It
// serves as the composition root where all dependencies are initialized and
// connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load deckhand configuration from ~/.config/deckhand/config.toml
//  2. Open the JSON file logger (the TUI owns the terminal, so nothing
//     may write to stdout or stderr while the program runs)
//  3. Read local preferences for the initial theme
//  4. Open the session store and restore any persisted login
//  5. Build the API client with a token source backed by the store
//  6. Launch the background token expiry watcher
//  7. Start the TUI and block until the user exits or the context cancels
//
// # Components
//
//   - app.go: Main Run function and dependency wiring
//   - watcher.go: Background goroutine that signs the user out when the
//     stored token passes its expiry
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read deckhand config
//	       ├─────> logging.Open()     JSON log file under the data dir
//	       ├─────> prefs.Load()       Local theme before any network call
//	       ├─────> session.Open()     Durable identity, Restore() once
//	       ├─────> api.NewClient()    HTTP client, token func reads the store
//	       ├─────> StartExpiryWatch() Background sign-out on token expiry
//	       └─────> ui.NewProgram()    Start TUI (blocks in p.Run)
//
//	Expiry Watcher Loop:
//	┌─────────────────────────────────────────┐
//	│ StartExpiryWatch() goroutine            │
//	│  ├─> store.Current()                    │
//	│  ├─> Identity.Expired(now)?             │
//	│  └─> store.Clear() + p.Send(expired)    │
//	│      └─> UI re-resolves to /login       │
//	└─────────────────────────────────────────┘
//
// # Expiry Behavior
//
// The watcher runs continuously in the background at a fixed interval
// (default: 30 seconds). On each tick it reads the current identity and,
// when the token's recorded expiry is in the past, clears the store and
// posts a message into the UI loop. Clearing the store also fires the
// store's change subscription, so the view re-resolves before the expiry
// notice lands. Tokens without an expiry claim are left alone; the
// server's 401 responses handle those.
//
// # Error Handling
//
// The app package distinguishes between fatal and recoverable errors:
//
// Fatal errors (returned from Run):
//   - Configuration file present but unreadable or invalid
//   - Log file cannot be created
//   - API client initialization failure (malformed server URL)
//
// Recoverable errors (logged, startup continues):
//   - Missing or broken preferences file (defaults apply)
//   - Session database unreadable (memory-only store, user logs in again)
//
// The backend being down is not a startup error at all: every fetch owns
// its failure, so deckhand starts against an unreachable server and shows
// per-view errors instead of refusing to launch.
//
// # Usage Example
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	opts := app.Options{
//		ConfigPath: "",             // Use default
//		Location:   "/deck/PX4QJT", // Deep link straight into a deck
//	}
//
//	if err := app.Run(ctx, opts); err != nil {
//		log.Fatalf("deckhand failed: %v", err)
//	}
//
// # Dependencies
//
//   - config: Loads and parses deckhand configuration files
//   - logging: File-backed zap logger construction
//   - prefs: Local theme preferences read before login
//   - session: Durable authenticated identity shared across the app
//   - api: HTTP client for the deck service
//   - ui: Terminal user interface (TUI) implementation
//
// # Design Rationale
//
// This package intentionally keeps orchestration logic minimal and focused.
// Business logic lives in domain packages (api, route, session, ui). The
// app package simply connects these pieces with sensible defaults for the
// single-user client use case.
package app
