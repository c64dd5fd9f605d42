// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

var logger *slog.Logger

// Init installs a text logger writing to w at the given level and makes it
// the slog default. A nil w means stderr.
func Init(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	logger = slog.New(handler).With("component", "resusage")
	slog.SetDefault(logger)
	return logger
}

// Logger returns the global logger instance.
func Logger() *slog.Logger {
	if logger == nil {
		Init(nil, slog.LevelWarn)
	}
	return logger
}
