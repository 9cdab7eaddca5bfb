package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields deckhand needs to reach its backend and
// keep local state.
type Config struct {
	ServerURL     string
	DataDir       string
	LogLevel      string
	ToastDuration time.Duration // 0 means per-level defaults
}

const (
	defaultConfigPath = "~/.config/deckhand/config.toml"
	defaultDataDir    = "~/.local/share/deckhand"
	defaultServerURL  = "http://127.0.0.1:8000"
	defaultLogLevel   = "info"
)

// Load locates and parses the deckhand config, falling back to defaults
// when missing. A .env file in the working directory is read first, and
// DECKHAND_SERVER_URL, DECKHAND_DATA_DIR and DECKHAND_LOG_LEVEL from
// the environment win over the file.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{ServerURL: defaultServerURL, DataDir: defaultDataDir, LogLevel: defaultLogLevel}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.DataDir = mustExpand(defaultDataDir)
			return applyEnv(cfg), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL       string `toml:"server_url"`
		DataDir         string `toml:"data_dir"`
		LogLevel        string `toml:"log_level"`
		ToastDurationMS int    `toml:"toast_duration_ms"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.ServerURL = strings.TrimSpace(raw.ServerURL)
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}

	cfg.DataDir = strings.TrimSpace(raw.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	cfg.DataDir = mustExpand(cfg.DataDir)

	cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if raw.ToastDurationMS > 0 {
		cfg.ToastDuration = time.Duration(raw.ToastDurationMS) * time.Millisecond
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("DECKHAND_SERVER_URL")); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DECKHAND_DATA_DIR")); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if v := strings.TrimSpace(os.Getenv("DECKHAND_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// LogPath returns the client's own log file location.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/deckhand.log")
	}
	return filepath.Join(c.DataDir, "deckhand.log")
}

// SessionDBPath returns the durable session record location.
func (c Config) SessionDBPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/session.db")
	}
	return filepath.Join(c.DataDir, "session.db")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
