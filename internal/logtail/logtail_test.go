package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFileIsEmpty(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 100)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Errorf("Read() = %v, want nil", got)
	}
}

func TestParseLine(t *testing.T) {
	line := `{"level":"info","ts":"2026-08-21T10:00:00.000+0000","caller":"app/app.go:42","msg":"session restored","username":"rifthunter","attempt":2}`

	entry, ok := ParseLine(line)
	if !ok {
		t.Fatalf("ParseLine() rejected a JSON line")
	}
	if entry.Level != "info" {
		t.Errorf("Level = %q, want info", entry.Level)
	}
	if entry.Message != "session restored" {
		t.Errorf("Message = %q", entry.Message)
	}
	if entry.Time != "2026-08-21T10:00:00.000+0000" {
		t.Errorf("Time = %q", entry.Time)
	}

	want := []Field{
		{Key: "attempt", Value: "2"},
		{Key: "username", Value: "rifthunter"},
	}
	if !reflect.DeepEqual(entry.Fields, want) {
		t.Errorf("Fields = %v, want %v", entry.Fields, want)
	}
}

func TestParseLine_NonJSONFallsThrough(t *testing.T) {
	if _, ok := ParseLine("plain panic output"); ok {
		t.Errorf("ParseLine() accepted a non-JSON line")
	}
	if _, ok := ParseLine(""); ok {
		t.Errorf("ParseLine() accepted an empty line")
	}
}
