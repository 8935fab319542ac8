package slog

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestCompactHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelDebug))

	logger.Info("extraction completed",
		"normalize.tier", "strict",
		"duration", 1500*time.Millisecond,
		"error", errors.New("boom"),
	)

	line := buf.String()
	if !strings.HasSuffix(line, " INFO extraction completed {\"normalize.tier\":\"strict\",\"duration\":\"1.5s\",\"error\":\"boom\"}\n") {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestCompactHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelWarn))

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), " WARN shown") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestCompactHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo)).
		With("component", "server").
		WithGroup("http")

	logger.Info("request", "status", 200, slog.Group("client", "ip", "127.0.0.1"))

	want := `{"component":"server","http.status":200,"http.client.ip":"127.0.0.1"}`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected %s in %q", want, buf.String())
	}
}

func TestCompactHandler_NoAttributes(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewCompactHandler(&buf, slog.LevelInfo)).Info("ready")

	if !strings.HasSuffix(buf.String(), " INFO ready\n") {
		t.Errorf("unexpected line: %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":    FormatJSON,
		" TEXT ":  FormatText,
		"compact": FormatCompact,
		"":        FormatCompact,
		"pretty":  FormatCompact,
	}
	for input, want := range tests {
		if got := ParseFormat(input); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}
}
