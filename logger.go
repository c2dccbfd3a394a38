package main

import (
	"io"
	"log/slog"
)

// NewLogger returns a structured slog.Logger writing JSON to w at the given
// level. fgcut passes stderr so stdout stays free for the caller.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

func logLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
