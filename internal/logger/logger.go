package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jar-backoffice/internal/config"
)

// NewLogger builds the process logger: JSON lines on stdout at the configured level.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := New(os.Stdout, cfg.Logging.Level).With("app", cfg.Application.Name, "env", cfg.Application.Env)
	logger.Info("logger initialized", "level", ParseLevel(cfg.Logging.Level))
	return logger
}

// New creates a JSON logger writing to w. Source locations are added at debug level.
func New(w io.Writer, level string) *slog.Logger {
	lvl := ParseLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	return slog.New(handler)
}

// ParseLevel maps a level name onto slog levels; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
