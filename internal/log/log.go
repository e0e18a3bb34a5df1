// Package log configures the process wide slog logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"

	charmlog "charm.land/log/v2"
	"github.com/charmbracelet/datagrid/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var initialized atomic.Bool

// Setup routes slog to a rotating JSON log file. It is used while the
// terminal belongs to the table. The returned closer flushes and closes the
// file.
func Setup(path string, opts config.LogOptions) (io.Closer, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     30,
	}
	handler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{
		Level:     level(opts.Debug),
		AddSource: true,
	})
	slog.SetDefault(slog.New(handler))
	initialized.Store(true)
	return rotator, nil
}

// SetupConsole routes slog to w through a charm log handler. Non-interactive
// commands log to stderr this way.
func SetupConsole(w io.Writer, debug bool) {
	slog.SetDefault(slog.New(NewConsoleHandler(w, debug)))
	initialized.Store(true)
}

// NewConsoleHandler returns a human readable slog handler writing to w.
func NewConsoleHandler(w io.Writer, debug bool) slog.Handler {
	lvl := charmlog.WarnLevel
	if debug {
		lvl = charmlog.DebugLevel
	}
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: debug,
		TimeFormat:      time.TimeOnly,
		Prefix:          "datagrid",
	})
}

// Initialized reports whether one of the setup functions ran.
func Initialized() bool {
	return initialized.Load()
}

func level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// RecoverPanic logs a recovered panic with its stack and runs cleanup. It
// must be deferred directly.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		slog.Error("Panic recovered", "name", name, "panic", r, "stack", string(debug.Stack()))
		if cleanup != nil {
			cleanup()
		}
	}
}
