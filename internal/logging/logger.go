package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"vesagent/internal/config"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

var (
	levelPattern = regexp.MustCompile(`(?:^|\s)level=(DEBUG|INFO|WARN|ERROR)\b`)
	tokenPattern = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|\b\d{1,3}(?:\.\d{1,3}){3}(?::\d+)?\b|\b-?\d+(?:\.\d+)?(?:ns|µs|ms|s|m|h)?\b`)
	ipPattern    = regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}(?::\d+)?$`)
)

// New builds the process logger from console and file sink settings.
// Params: cfg logging section; at least one sink is expected to be enabled.
// Returns: logger, close function for file sinks, and configuration error.
func New(cfg config.LogConfig) (*slog.Logger, func(), error) {
	var handlers []slog.Handler
	closeFn := func() {}

	if cfg.Console.Enabled {
		var out io.Writer = os.Stdout
		if cfg.Console.Color && cfg.Console.Format != "json" {
			out = &colorLineWriter{dst: os.Stdout}
		}
		handler, err := newHandler(out, cfg.Console)
		if err != nil {
			return nil, nil, fmt.Errorf("log.console: %w", err)
		}
		handlers = append(handlers, handler)
	}

	if cfg.File.Enabled {
		if strings.TrimSpace(cfg.File.Path) == "" {
			return nil, nil, fmt.Errorf("log.file: path is required")
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		handler, err := newHandler(rotator, cfg.File)
		if err != nil {
			_ = rotator.Close()
			return nil, nil, fmt.Errorf("log.file: %w", err)
		}
		handlers = append(handlers, handler)
		closeFn = func() {
			_ = rotator.Close()
		}
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.DiscardHandler), closeFn, nil
	case 1:
		return slog.New(handlers[0]), closeFn, nil
	default:
		return slog.New(fanoutHandler(handlers)), closeFn, nil
	}
}

// ParseLevel maps a textual level to slog.Level.
// Params: level one of debug, info, warn, error (case-insensitive); empty means info.
// Returns: slog level or error for unknown names.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", level)
	}
}

// newHandler creates one sink handler.
// Params: out destination writer; sink level and format.
// Returns: slog handler or error on bad level/format.
func newHandler(out io.Writer, sink config.LogSinkConfig) (slog.Handler, error) {
	level, err := ParseLevel(sink.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(strings.TrimSpace(sink.Format)) {
	case "", "line":
		return slog.NewTextHandler(out, opts), nil
	case "json":
		return slog.NewJSONHandler(out, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", sink.Format)
	}
}

// fanoutHandler sends every record to all handlers.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(h))
	for idx, handler := range h {
		next[idx] = handler.WithAttrs(attrs)
	}
	return next
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(h))
	for idx, handler := range h {
		next[idx] = handler.WithGroup(name)
	}
	return next
}

// colorLineWriter colors slog text lines by level and highlights value tokens.
type colorLineWriter struct {
	dst io.Writer
}

// Write renders one slog text line with ANSI colors.
// Params: p one formatted log line, optionally newline-terminated.
// Returns: len(p) on success so slog treats the write as complete.
func (w *colorLineWriter) Write(p []byte) (int, error) {
	line := p
	newline := bytes.HasSuffix(line, []byte("\n"))
	if newline {
		line = line[:len(line)-1]
	}

	base := levelColor(line)
	if base == "" {
		if _, err := w.dst.Write(p); err != nil {
			return 0, err
		}
		return len(p), nil
	}

	var out bytes.Buffer
	out.Grow(len(p) + 64)
	out.WriteString(base)
	out.Write(tokenPattern.ReplaceAllFunc(line, func(token []byte) []byte {
		color := ansiYellow
		switch {
		case token[0] == '"':
			color = ansiGreen
		case ipPattern.Match(token):
			color = ansiCyan
		}
		colored := make([]byte, 0, len(token)+len(color)+len(ansiReset)+len(base))
		colored = append(colored, color...)
		colored = append(colored, token...)
		colored = append(colored, ansiReset...)
		colored = append(colored, base...)
		return colored
	}))
	out.WriteString(ansiReset)
	if newline {
		out.WriteByte('\n')
	}

	if _, err := w.dst.Write(out.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// levelColor picks the base color from the level attribute.
// Params: line slog text line.
// Returns: ANSI color or empty string when no level is present.
func levelColor(line []byte) string {
	match := levelPattern.FindSubmatch(line)
	if match == nil {
		return ""
	}
	switch string(match[1]) {
	case "DEBUG":
		return ansiMagenta
	case "INFO":
		return ansiBlue
	case "WARN":
		return ansiYellow
	default:
		return ansiRed
	}
}
