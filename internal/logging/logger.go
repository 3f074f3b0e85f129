package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel переводит уровень из конфигурации (DEBUG, INFO, WARN, ERROR) в slog.Level.
// Пустое или неизвестное значение дает INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New создает структурированный логгер в формате JSON. w == nil означает os.Stdout.
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: ParseLevel(level) == slog.LevelDebug,
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

// Setup создает логгер и делает его логгером по умолчанию
func Setup(level string, w io.Writer) *slog.Logger {
	logger := New(level, w)
	slog.SetDefault(logger)
	return logger
}
