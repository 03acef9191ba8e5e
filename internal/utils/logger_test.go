package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "test", Warning)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	logger.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level were emitted: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown") || !strings.Contains(out, "[ERROR] also shown") {
		t.Errorf("expected warn/error output, got %q", out)
	}
}

func TestLogger_KeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "test", Debug)

	logger.Info("dispatching", "provider", "gemini", "request_id", "abc")

	out := buf.String()
	if !strings.Contains(out, "provider=gemini") || !strings.Contains(out, "request_id=abc") {
		t.Errorf("key-value pairs missing: %q", out)
	}
	if !strings.Contains(out, "[test]") {
		t.Errorf("prefix missing: %q", out)
	}
}

func TestLogger_SetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "test", Error)

	logger.Warn("dropped")
	logger.SetLogLevel(Debug)
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("message below level was emitted: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("message above level was not emitted: %q", out)
	}
}
