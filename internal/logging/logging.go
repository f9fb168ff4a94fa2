// Package logging installs the process-wide slog logger every engine
// component logs through. Components never construct their own handlers;
// the CLI (or an embedding service) calls Configure once at startup and
// everything else uses the slog package-level functions with structured
// attributes (tenant, experiment_id, comparison_id, status).
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Configure installs the global slog handler.
//
// level is one of "debug", "info", "warn"/"warning", or "error"; anything
// else falls back to info. format "json" selects the JSON handler for
// production log shipping; any other value gets the human-readable text
// handler. A nil output defaults to stderr.
func Configure(level, format string, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch s {
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
