package logger

import (
	"log/slog"
	"strings"
)

// New builds the process logger from the configured level name and a
// handler factory, so mains pick the output format (Cloud Run JSON in
// production, discard in tests) without re-parsing levels.
func New(level string, handler func(level slog.Level) slog.Handler) *slog.Logger {
	h := handler(getSlogLevel(level))
	return slog.New(h)
}

// getSlogLevel maps a level name to its slog level; unknown names mean info.
func getSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
