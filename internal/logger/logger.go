// Package logger builds the structured logger shared by the binaries.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls log level and the optional rotating log file.
type Config struct {
	Level      string // debug, info, warn, error
	File       string // empty logs to stdout only
	MaxSize    int    // megabytes per file
	MaxBackups int
	MaxAge     int // days
}

// New returns a JSON slog.Logger writing to out and, when cfg.File is set,
// to a rotating file. The returned closer releases the file.
func New(cfg Config, out io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSize, 64),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAge, 7),
			Compress:   true,
		}
		out = io.MultiWriter(out, file)
		closer = file
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, closer, nil
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level %q", s)
	}
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
