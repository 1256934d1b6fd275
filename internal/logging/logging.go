// Package logging provides structured logging for git-ai using log/slog,
// writing JSON lines to <cache-dir>/logs/git-ai.log and falling back to
// internal/debug.Log when no logger has been initialized for the process
// (e.g. a short-lived subcommand that never calls Init).
package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jensroland/git-ai/internal/debug"
)

var (
	mu       sync.RWMutex
	logger   *slog.Logger
	cacheDir string
)

// Init points the package logger at <cacheDir>/logs/git-ai.log. If the
// directory or file can't be opened, subsequent calls fall back to
// debug.Log against the same cacheDir rather than failing the caller.
func Init(dir string) {
	mu.Lock()
	defer mu.Unlock()

	cacheDir = dir
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		logger = nil
		return
	}
	f, err := os.OpenFile(filepath.Join(logsDir, "git-ai.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger = nil
		return
	}
	logger = slog.New(slog.NewJSONHandler(f, nil))
}

func current() (*slog.Logger, string) {
	mu.RLock()
	defer mu.RUnlock()
	return logger, cacheDir
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { emit(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { emit(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { emit(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { emit(slog.LevelError, msg, args...) }

func emit(level slog.Level, msg string, args ...any) {
	l, dir := current()
	if l != nil {
		l.Log(nil, level, msg, args...)
		return
	}
	if dir == "" {
		return
	}
	data := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			data[key] = args[i+1]
		}
	}
	debug.Log(dir, "git-ai.log", msg, data)
}
