package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vesagent/internal/config"
)

// TestColorLineWriter_HighlightsLevelAndTokens verifies level and token coloring.
// Params: testing.T for assertions.
// Returns: none.
func TestColorLineWriter_HighlightsLevelAndTokens(t *testing.T) {
	var dst bytes.Buffer
	writer := &colorLineWriter{dst: &dst}

	line := `level=INFO msg="hello" peer=10.20.30.40 retries=3`
	if _, err := writer.Write([]byte(line)); err != nil {
		t.Fatalf("write: %v", err)
	}

	rendered := dst.String()
	if !strings.HasPrefix(rendered, ansiBlue) {
		t.Fatalf("expected INFO line base color")
	}
	if !strings.Contains(rendered, ansiGreen+`"hello"`+ansiReset+ansiBlue) {
		t.Fatalf("expected quoted string token color")
	}
	if !strings.Contains(rendered, ansiCyan+`10.20.30.40`+ansiReset+ansiBlue) {
		t.Fatalf("expected IP token color")
	}
	if !strings.Contains(rendered, ansiYellow+`3`+ansiReset+ansiBlue) {
		t.Fatalf("expected number token color")
	}
	if !strings.HasSuffix(rendered, ansiReset) {
		t.Fatalf("expected trailing reset sequence")
	}
}

// TestColorLineWriter_NoLevelColor verifies passthrough for unknown levels.
// Params: testing.T for assertions.
// Returns: none.
func TestColorLineWriter_NoLevelColor(t *testing.T) {
	var dst bytes.Buffer
	writer := &colorLineWriter{dst: &dst}

	line := `msg="plain" value=42`
	if _, err := writer.Write([]byte(line)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := dst.String(); got != line {
		t.Fatalf("expected passthrough line, got %q", got)
	}
}

// TestColorLineWriter_KeepsNewlineAfterReset verifies slog line termination is preserved.
// Params: testing.T for assertions.
// Returns: none.
func TestColorLineWriter_KeepsNewlineAfterReset(t *testing.T) {
	var dst bytes.Buffer
	writer := &colorLineWriter{dst: &dst}

	line := "level=ERROR msg=boom\n"
	n, err := writer.Write([]byte(line))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != len(line) {
		t.Fatalf("expected full write count, got %d", n)
	}
	if !strings.HasPrefix(dst.String(), ansiRed) || !strings.HasSuffix(dst.String(), ansiReset+"\n") {
		t.Fatalf("unexpected rendering: %q", dst.String())
	}
}

// TestParseLevel verifies level names.
// Params: testing.T for assertions.
// Returns: none.
func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %v want %v", input, got, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

// TestNew_FileSinkWritesJSON verifies the rotating file sink and level filtering.
// Params: testing.T for assertions.
// Returns: none.
func TestNew_FileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger, closeFn, err := New(config.LogConfig{
		File: config.LogSinkConfig{Enabled: true, Level: "warn", Format: "json", Path: path, MaxSizeMB: 1},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("collector slow", slog.String("path", "/eventListener/v5"))
	closeFn()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(raw)
	if strings.Contains(content, "hidden") {
		t.Fatalf("info record must be filtered: %s", content)
	}
	if !strings.Contains(content, `"msg":"collector slow"`) || !strings.Contains(content, `"path":"/eventListener/v5"`) {
		t.Fatalf("unexpected file content: %s", content)
	}
}

// TestNew_RejectsInvalidSink verifies sink validation.
// Params: testing.T for assertions.
// Returns: none.
func TestNew_RejectsInvalidSink(t *testing.T) {
	if _, _, err := New(config.LogConfig{Console: config.LogSinkConfig{Enabled: true, Level: "loud"}}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, _, err := New(config.LogConfig{Console: config.LogSinkConfig{Enabled: true, Format: "xml"}}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, _, err := New(config.LogConfig{File: config.LogSinkConfig{Enabled: true}}); err == nil {
		t.Fatalf("expected error for file sink without path")
	}
}

// TestFanoutHandler_RespectsPerSinkLevels verifies records reach only sinks that enable them.
// Params: testing.T for assertions.
// Returns: none.
func TestFanoutHandler_RespectsPerSinkLevels(t *testing.T) {
	var debugSink, errorSink bytes.Buffer
	logger := slog.New(fanoutHandler{
		slog.NewTextHandler(&debugSink, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorSink, &slog.HandlerOptions{Level: slog.LevelError}),
	}).With(slog.String("component", "worker"))

	logger.Debug("retrying")
	logger.Error("failed")

	if !strings.Contains(debugSink.String(), "msg=retrying") || !strings.Contains(debugSink.String(), "component=worker") {
		t.Fatalf("debug sink missing record: %q", debugSink.String())
	}
	if strings.Contains(errorSink.String(), "retrying") || !strings.Contains(errorSink.String(), "msg=failed") {
		t.Fatalf("unexpected error sink content: %q", errorSink.String())
	}
}
