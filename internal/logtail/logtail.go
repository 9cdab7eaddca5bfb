package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file is an empty
// tail, not an error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time    string
	Level   string
	Message string
	Fields  []Field
}

// Field is one structured key/value pair beyond the standard keys.
type Field struct {
	Key   string
	Value string
}

// standard zap production encoder keys; everything else is a field.
var reservedKeys = map[string]bool{
	"ts":         true,
	"level":      true,
	"msg":        true,
	"caller":     true,
	"stacktrace": true,
}

// ParseLine decodes a zap JSON line. The second return is false when
// the line is not JSON, in which case the caller shows it raw.
func ParseLine(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}

	entry := Entry{}
	if v, ok := raw["ts"].(string); ok {
		entry.Time = v
	}
	if v, ok := raw["level"].(string); ok {
		entry.Level = v
	}
	if v, ok := raw["msg"].(string); ok {
		entry.Message = v
	}

	for k, v := range raw {
		if reservedKeys[k] {
			continue
		}
		entry.Fields = append(entry.Fields, Field{Key: k, Value: fmt.Sprint(v)})
	}
	sort.Slice(entry.Fields, func(i, j int) bool {
		return entry.Fields[i].Key < entry.Fields[j].Key
	})
	return entry, true
}
