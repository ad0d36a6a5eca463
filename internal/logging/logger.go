// Package logging provides structured logging configuration using log/slog.
//
// Loggers pulled from a context carry the chi request ID (HTTP server) or the
// pipeline run ID (CLI), so every entry for one run or request can be
// correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// LevelTrace is more verbose than debug and logs every accepted record.
const LevelTrace = slog.Level(-8)

// Levels lists the accepted level names from least to most verbose.
var Levels = []string{"error", "warn", "info", "debug", "trace"}

// Setup configures the global slog logger based on level and format and
// returns it.
//
// Level values: "trace", "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(w io.Writer, level, format string) *slog.Logger {
	logger := New(w, level, format)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger without touching the global default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// VerbosityLevel raises base by count steps along Levels, stopping at
// "trace". An unrecognised base counts as "info", so with the default
// level -v is debug and -vv is trace.
func VerbosityLevel(base string, count int) string {
	i := slices.Index(Levels, strings.ToLower(base))
	if i < 0 {
		i = slices.Index(Levels, "info")
	}
	if count > 0 {
		i += count
	}
	return Levels[min(i, len(Levels)-1)]
}

type runIDKey struct{}

// WithRunID stores a pipeline run ID on the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run ID stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// FromContext returns the default logger enriched with the request ID and
// run ID found on ctx.
//
// Usage:
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("normalizing upload", "file", name)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if runID := RunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	return logger
}

// WithFields returns a context logger with additional structured fields.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
