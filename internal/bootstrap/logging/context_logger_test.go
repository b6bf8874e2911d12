package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestWithAttrsReplacesDuplicateKeys(t *testing.T) {
	ctx := WithAttrs(context.Background(), slog.String("component", "a"), slog.String("job", "sweep"))
	ctx = WithAttrs(ctx, slog.String("component", "b"))

	attrs := Attrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("Attrs() len = %d, want 2", len(attrs))
	}
	if attrs[0].Key != "component" || attrs[0].Value.String() != "b" {
		t.Fatalf("Attrs()[0] = %v, want component=b", attrs[0])
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "json", "warn")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	ctx := WithLogger(WithAttrs(context.Background(), slog.String("run_id", "r1")), logger)
	Info(ctx, "dropped")
	Warn(ctx, "kept", slog.Int("count", 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["msg"] != "kept" || entry["run_id"] != "r1" || entry["count"] != float64(2) {
		t.Fatalf("entry = %#v", entry)
	}
}

func TestNewLoggerRejectsUnknownSettings(t *testing.T) {
	if _, err := NewLogger(nil, "xml", "info"); err == nil {
		t.Fatalf("NewLogger() expected error for unknown format")
	}
	if _, err := NewLogger(nil, "text", "loud"); err == nil {
		t.Fatalf("NewLogger() expected error for unknown level")
	}
}
