package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Canonical log field names
const (
	KeyPath   = "path"
	KeyParent = "parent"
	KeyDepth  = "depth"
	KeyCount  = "count"
	KeyError  = "error"
)

func Path(p string) slog.Attr   { return slog.String(KeyPath, p) }
func Parent(p string) slog.Attr { return slog.String(KeyParent, p) }
func Depth(d int) slog.Attr     { return slog.Int(KeyDepth, d) }
func Count(n int) slog.Attr     { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing text or JSON records to w
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
