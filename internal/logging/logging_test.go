package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	ctx := context.Background()

	log := New(&bytes.Buffer{}, "warn", "json")
	if log.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !log.Enabled(ctx, slog.LevelWarn) {
		t.Error("warn should be enabled at warn level")
	}

	log = New(&bytes.Buffer{}, "debug", "json")
	if !log.Enabled(ctx, slog.LevelDebug) {
		t.Error("debug should be enabled at debug level")
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("cycle finished", "checked", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "cycle finished" || entry["checked"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "TEXT").Info("cycle finished", "checked", 3)

	out := buf.String()
	if !strings.Contains(out, `msg="cycle finished"`) || !strings.Contains(out, "checked=3") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestDiscard(t *testing.T) {
	// must not panic
	Discard().Error("dropped")
}
