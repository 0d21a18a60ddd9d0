// Package logger builds the process logger. Components receive it by
// injection instead of writing through a redirected global console.
package logger

import (
	"log/slog"
	"os"
)

// New returns a text slog.Logger on stdout. Debug enables the debug level.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
