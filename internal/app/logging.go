package app

import (
	"io"
	"log/slog"
)

// SetupLogging installs a text logger writing to w as the default logger.
func SetupLogging(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
