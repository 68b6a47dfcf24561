package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerRendersComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("summary stored", slog.String(FieldComponent, "orchestrator"), slog.Int("parts", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO orchestrator: summary stored") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "parts=3") {
		t.Fatalf("missing attribute in line: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Warn("delivery retried", slog.String("reason", "rate limited"))

	if !strings.Contains(buf.String(), `reason="rate limited"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	ctx := WithItemID(context.Background(), 42)
	ctx = WithChannel(ctx, "veritasium")
	WithContext(ctx, logger).Info("processing")

	line := buf.String()
	if !strings.Contains(line, "item_id=42") || !strings.Contains(line, "channel=veritasium") {
		t.Fatalf("context fields missing: %q", line)
	}
}
