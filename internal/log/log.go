// Package log configures structured logging for the pkgresolve command.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

var (
	logger  = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logFile *os.File
)

// Options configures the logger.
type Options struct {
	// Verbose enables debug output to stderr.
	Verbose bool
	// JSONFormat uses JSON output format for stderr.
	JSONFormat bool
	// File, if set, receives every record as JSON regardless of Verbose.
	File string
	// Stderr is the writer for stderr output (defaults to os.Stderr).
	Stderr io.Writer
}

// Init initializes the global logger with the given options and returns it.
func Init(opts Options) (*slog.Logger, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var handlers []slog.Handler

	stderrLevel := slog.LevelWarn
	if opts.Verbose {
		stderrLevel = slog.LevelDebug
	}
	stderrOpts := &slog.HandlerOptions{Level: stderrLevel}

	if opts.JSONFormat {
		handlers = append(handlers, slog.NewJSONHandler(stderr, stderrOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(stderr, stderrOpts))
	}

	Close()
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if len(handlers) == 1 {
		logger = slog.New(handlers[0])
	} else {
		logger = slog.New(&multiHandler{handlers: handlers})
	}
	slog.SetDefault(logger)
	return logger, nil
}

// Close closes the log file if one was opened.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Logger returns the global logger.
func Logger() *slog.Logger {
	return logger
}

// multiHandler fans out log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

