package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "DEBUG", want: zapcore.DebugLevel},
		{in: " warn ", want: zapcore.WarnLevel},
		{in: "warning", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", want: zapcore.InfoLevel, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tunesphere.log")
	var console bytes.Buffer

	logger, closeFn, err := New(Options{Level: "info", Path: path, Console: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Named("api").Info("request done", zap.Int("status", 200))
	logger.Debug("filtered out")
	if err := closeFn(); err != nil {
		t.Fatalf("close returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %q, want exactly one entry", lines)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry[MessageKey] != "request done" || entry[LevelKey] != "info" || entry[NameKey] != "api" {
		t.Fatalf("entry = %v", entry)
	}
	if _, ok := entry[TimeKey]; !ok {
		t.Fatalf("entry missing %s: %v", TimeKey, entry)
	}
	if entry["status"] != float64(200) {
		t.Fatalf("status field = %v", entry["status"])
	}
	if !strings.Contains(console.String(), "request done") {
		t.Fatalf("console did not receive entry: %q", console.String())
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, _, err := New(Options{Level: "loud", Path: filepath.Join(t.TempDir(), "x.log")}); err == nil {
		t.Fatalf("New accepted unknown level")
	}
	if _, _, err := New(Options{Path: "  "}); err == nil {
		t.Fatalf("New accepted empty path")
	}
}
