package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel converts a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
}

// NewLogger builds a logger writing to stderr.
func NewLogger(cfg LogConfig) *slog.Logger {
	return newLogger(os.Stderr, cfg)
}

func newLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
