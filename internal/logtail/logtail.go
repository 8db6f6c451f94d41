package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap/zapcore"

	"github.com/five82/tunesphere/internal/logging"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
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

// Entry is one decoded JSON log line.
type Entry struct {
	Time    time.Time
	Level   zapcore.Level
	Logger  string
	Caller  string
	Message string
	Fields  map[string]any
}

// Parse decodes a line written by internal/logging. It reports false for
// blank or non-JSON lines.
func Parse(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] != '{' {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return Entry{}, false
	}

	entry := Entry{
		Logger:  takeString(raw, logging.NameKey),
		Caller:  takeString(raw, logging.CallerKey),
		Message: takeString(raw, logging.MessageKey),
	}
	if ts := takeString(raw, logging.TimeKey); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Time = parsed
		}
	}
	if lvl := takeString(raw, logging.LevelKey); lvl != "" {
		if parsed, err := zapcore.ParseLevel(lvl); err == nil {
			entry.Level = parsed
		}
	}
	delete(raw, "stacktrace")
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, true
}

func takeString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	delete(m, key)
	s, _ := v.(string)
	return s
}

// Format renders e as a single human-readable line:
//
//	15:04:05 INFO  api  request done  status=200
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s", e.Level.CapitalString())
	if e.Logger != "" {
		b.WriteString("  ")
		b.WriteString(e.Logger)
	}
	b.WriteString("  ")
	b.WriteString(e.Message)

	keys := lo.Keys(e.Fields)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s=%v", k, e.Fields[k])
	}
	return b.String()
}

// ReadEntries parses the last maxLines of path and keeps entries at or above
// minLevel. Lines that are not JSON are skipped.
func ReadEntries(path string, maxLines int, minLevel zapcore.Level) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entry, ok := Parse(line)
		if !ok || entry.Level < minLevel {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
