package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// setupLogging installs a text handler on w as the default logger. Debug
// output is enabled by -v.
func setupLogging(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// debugLog writes a printf-style message at debug level.
func debugLog(format string, args ...any) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug(fmt.Sprintf(format, args...))
}
