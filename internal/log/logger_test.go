package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatalf("expected unknown level to report false")
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentStorage, Output: &buf})
	l.WithComponent(ComponentRecords).Info("saved", FieldUserID, "u1")

	out := buf.String()
	if !strings.Contains(out, "component=records") || !strings.Contains(out, "user_id=u1") {
		t.Fatalf("unexpected log line %q", out)
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
	l := New(DefaultConfig())
	if FromContext(NewContext(context.Background(), l)) != l {
		t.Fatalf("expected logger from context")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))
	r := httptest.NewRequest("GET", "/api/bills?x=1", nil)

	sl.LogHTTPEnd(context.Background(), r, 503, 12, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "status_code=503") {
		t.Fatalf("expected error level line, got %q", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "store failed", errors.New("boom"), OpCreate, nil)
	if !strings.Contains(buf.String(), "error=boom") || !strings.Contains(buf.String(), "operation=create") {
		t.Fatalf("unexpected error line %q", buf.String())
	}
}
