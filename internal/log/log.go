// Package log is a small category-tagged wrapper around log/slog.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type Category string

const (
	CatHost    Category = "host"
	CatSession Category = "session"
	CatCalc    Category = "calc"
	CatScript  Category = "script"
	CatConfig  Category = "config"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
}

// Init replaces the process logger. format is "text" or "json".
func Init(w io.Writer, level string, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}

	current.Store(slog.New(handler))
	return nil
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level %q", level)
	}
}

func Logger() *slog.Logger {
	return current.Load()
}

func Debug(cat Category, msg string, args ...any) {
	current.Load().Debug(msg, append([]any{"cat", string(cat)}, args...)...)
}

func Info(cat Category, msg string, args ...any) {
	current.Load().Info(msg, append([]any{"cat", string(cat)}, args...)...)
}

func Warn(cat Category, msg string, args ...any) {
	current.Load().Warn(msg, append([]any{"cat", string(cat)}, args...)...)
}

func ErrorErr(cat Category, msg string, err error, args ...any) {
	current.Load().Error(msg, append([]any{"cat", string(cat), "err", err}, args...)...)
}
