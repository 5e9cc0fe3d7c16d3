package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	ServiceName string
	Environment string
	Level       string
	Output      io.Writer // defaults to stdout
}

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

func NewLogger(cfg Config) *slog.Logger {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("env", cfg.Environment),
	)
}
