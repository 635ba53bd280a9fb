package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInitProductionWritesJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	log, flush := Init(&buf, Options{})
	defer flush()

	log.Debug("hidden")
	slog.Info("served", "path", "/blog/")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "served" || rec["path"] != "/blog/" {
		t.Errorf("record = %v", rec)
	}
}

func TestInitDevLogsDebugText(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	log, _ := Init(&buf, Options{Dev: true})
	log.Debug("cache miss", "slug", "welcome")

	if !strings.Contains(buf.String(), "level=DEBUG") || !strings.Contains(buf.String(), "slug=welcome") {
		t.Errorf("output = %q", buf.String())
	}
}
