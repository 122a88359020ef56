// Package testutil provides shared helpers for tests that need a logger.
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes through t.Log, so
// adapter and loader logs show up attached to the failing test and stay
// quiet otherwise.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	// The text handler terminates records with a newline; t.Log adds its
	// own, so strip one to keep the output single-spaced.
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
