package xlog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestHandleWritesTimestampedLine(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, slog.LevelInfo, false)
	logger := slog.New(h)
	logger.Info("block translated", "opcodes", 4)

	out := buf.String()
	assert(t, strings.Contains(out, "INFO:"), "expected level prefix, got %q", out)
	assert(t, strings.Contains(out, "block translated"), "expected message, got %q", out)
	assert(t, strings.HasSuffix(out, "\n"), "expected trailing newline")
}

func TestDebugSuppressedUnlessEnabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, slog.LevelDebug, false)
	assert(t, !h.Enabled(context.Background(), slog.LevelDebug), "debug must stay gated off by default")

	h2 := NewHandler(&buf, slog.LevelDebug, true)
	assert(t, h2.Enabled(context.Background(), slog.LevelDebug), "debug must be enabled when requested")
}
