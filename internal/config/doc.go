// Package config handles loading and parsing deckhand configuration files.
//
// # Overview
//
// This package reads deckhand's TOML configuration to discover the backend
// server URL and the local data directory. The config is deliberately small:
// everything per-user and cosmetic lives in the prefs package instead, so a
// machine-level config file can be shared without dragging theme choices
// along with it.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/deckhand/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. Apply DECKHAND_* environment variables on top (a .env file in the
//     working directory is read first)
//
// # Default Values
//
//   - Config file: ~/.config/deckhand/config.toml
//   - Server URL: http://127.0.0.1:8000
//   - Data directory: ~/.local/share/deckhand
//   - Client log: <data_dir>/deckhand.log
//   - Session record: <data_dir>/session.db
//   - Log level: info
//
// # Configuration Fields
//
// The Config struct contains only the fields deckhand needs:
//
//   - ServerURL: Base URL of the deck service API
//   - DataDir: Directory holding the log file and session record
//   - LogLevel: Client log verbosity (debug, info, warn, error)
//   - ToastDuration: Override for notification display time (zero keeps
//     the per-level defaults)
//
// # TOML Format
//
// Example deckhand config.toml:
//
//	server_url = "https://decks.example.com"
//	data_dir = "~/.local/share/deckhand"
//	log_level = "debug"
//	toast_duration_ms = 4000
//
// All fields are optional. Tilde expansion is performed automatically.
//
// # Environment Overrides
//
// DECKHAND_SERVER_URL, DECKHAND_DATA_DIR and DECKHAND_LOG_LEVEL win over
// the file when set. godotenv loads a .env from the working directory
// before the environment is consulted, which keeps development setups out
// of the real config file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//
// Missing config files are NOT an error - defaults are used instead.
// This allows deckhand to work out-of-the-box against a local server.
//
// # Usage Example
//
//	// Use default config path
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatalf("failed to load config: %v", err)
//	}
//
//	// Use explicit config path
//	cfg, err := config.Load("/etc/deckhand/config.toml")
//	if err != nil {
//		log.Fatalf("failed to load config: %v", err)
//	}
//
//	// Access configuration
//	client, err := api.NewClient(cfg.ServerURL, tokenFn)
//	logPath := cfg.LogPath()
//
// # Design Philosophy
//
// This package follows the principle of sensible defaults. deckhand should
// work immediately against a server on the default local port without
// requiring any configuration file to exist.
//
// The config package is read-only and stateless - it loads configuration
// once at startup and returns an immutable Config struct. No global state
// or singleton patterns are used.
package config
