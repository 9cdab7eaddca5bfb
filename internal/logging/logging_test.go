package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestOpen_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "deckhand.log")

	logger, err := Open(path, "debug")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	logger.Info("hello")
	logger.Debug("fine detail")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, `"msg":"hello"`) {
		t.Fatalf("log file missing info line: %q", content)
	}
	if !strings.Contains(content, `"fine detail"`) {
		t.Fatalf("log file missing debug line at debug level: %q", content)
	}
}

func TestOpen_LevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deckhand.log")

	logger, err := Open(path, "warn")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(raw)
	if strings.Contains(content, "quiet") {
		t.Fatalf("info line written at warn level: %q", content)
	}
	if !strings.Contains(content, "loud") {
		t.Fatalf("warn line missing: %q", content)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"  WARN  ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
