package main

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger returns a JSON logger at the named level. Unknown levels fall
// back to info.
func newLogger(w io.Writer, levelStr string) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
