// This file implements process-wide logging setup, adapted directly from
// the teacher's internal/config/logging.go. It uses Go's stdlib log/slog
// exclusively; all log output goes to os.Stderr so stdout stays free for
// piped build output.
package ndgconfig

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SetupLogging configures the global slog default logger with the given
// level and format ("json" or anything else for text). Output always goes
// to os.Stderr. Safe to call multiple times; each call replaces the
// previous global logger.
func SetupLogging(level slog.Level, format string) {
	SetupLoggingWithWriter(level, format, os.Stderr)
}

// SetupLoggingWithWriter is SetupLogging with an explicit writer, used by
// tests to capture log output in a buffer.
func SetupLoggingWithWriter(level slog.Level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ResolveLogLevel applies the precedence: NDG_DEBUG=1 env var, then
// --verbose, then --quiet, else info.
func ResolveLogLevel(verbose, quiet bool) slog.Level {
	if os.Getenv("NDG_DEBUG") == "1" {
		return slog.LevelDebug
	}
	if verbose {
		return slog.LevelDebug
	}
	if quiet {
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ResolveLogFormat reads NDG_LOG_FORMAT ("json" or else text).
func ResolveLogFormat() string {
	if strings.EqualFold(os.Getenv("NDG_LOG_FORMAT"), "json") {
		return "json"
	}
	return "text"
}

// NewLogger returns a child logger tagged with a "component" attribute.
func NewLogger(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
