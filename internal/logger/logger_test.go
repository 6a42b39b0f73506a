package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(EnvProd, &buf)
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}
	cl := Component(l, "test")
	cl.Info().Str("task_id", "abc").Msg("created task")
	cl.Debug().Msg("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line at info level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if entry["component"] != "test" || entry["task_id"] != "abc" || entry["message"] != "created task" {
		t.Errorf("Unexpected entry %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Errorf("Expected timestamp field")
	}
}

func TestNewUnknownEnv(t *testing.T) {
	if _, err := New("staging", nil); err == nil {
		t.Errorf("Expected error for unknown env")
	}
}
