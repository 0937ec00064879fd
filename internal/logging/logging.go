// Package logging builds the process logger: a console handler plus an
// optional rotated JSON file, dispatched by level.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the handlers built by Setup.
type Options struct {
	Level   slog.Level
	JSON    bool      // console format
	File    string    // rotated JSON log; empty disables it
	Console io.Writer // defaults to os.Stderr

	MaxSizeMB  int
	MaxBackups int
}

// multiHandler dispatches records to the console and file handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, x := range h.handlers {
		if x.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, x := range h.handlers {
		if x.Enabled(ctx, r.Level) {
			errs = append(errs, x.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, x := range h.handlers {
		next[i] = x.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, x := range h.handlers {
		next[i] = x.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}

// Setup returns a logger for opts and a cleanup func closing the log file.
// The file always records Debug and above.
func Setup(opts Options) (*slog.Logger, func(), error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	var consoleHandler slog.Handler = slog.NewTextHandler(console, ho)
	if opts.JSON {
		consoleHandler = slog.NewJSONHandler(console, ho)
	}

	if opts.File == "" {
		return slog.New(consoleHandler), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    max(opts.MaxSizeMB, 10),
		MaxBackups: max(opts.MaxBackups, 3),
		LocalTime:  true,
	}
	fileHandler := slog.NewJSONHandler(lj, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})

	logger := slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
	cleanup := func() {
		if err := lj.Close(); err != nil {
			logger.Error("failed to close log file", "error", err)
		}
	}

	return logger, cleanup, nil
}
