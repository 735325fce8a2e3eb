package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	DEBUG = "debug"
	INFO  = "info"
	WARN  = "warn"
	ERROR = "error"

	JSON = "json"
	TEXT = "text"
)

type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string
	Format    string
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Format == "" {
		cfg.Format = JSON
	}

	var level slog.Level
	switch cfg.Level {
	case DEBUG:
		level = slog.LevelDebug
	case WARN:
		level = slog.LevelWarn
	case ERROR:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == TEXT {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("service", cfg.Service),
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// Fatal logs at error level and exits with status 1.
// Reserved for unrecoverable startup failures.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
