// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

func levelFromString(s string) (l slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug, true
	case "info", "inf", "":
		return slog.LevelInfo, true
	case "warn", "wrn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ValidLevel reports whether s names a log level.
func ValidLevel(s string) bool {
	_, ok := levelFromString(s)
	return ok
}

// Init builds a text logger at the given level, installs it as the slog
// default and returns it with a function that closes the log file.
//
// An empty path logs to stderr. Stdout is never used: it carries the MCP
// protocol stream.
func Init(path, level string) (*slog.Logger, func() error, error) {
	loglevel, ok := levelFromString(level)
	if !ok {
		return nil, nil, fmt.Errorf("unknown log level %q", level)
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = logFile
		closeFn = logFile.Close
	}

	logger := New(out, loglevel)
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// New returns a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
