// Package logging builds the slog loggers handed to the stores and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level, destination and format of a logger.
type Options struct {
	Level     string
	Writer    io.Writer
	Component string
	// JSON selects the JSON handler; the default is text.
	JSON bool
}

// NewLogger returns a logger writing to opts.Writer (stderr when nil),
// tagged with the component name when one is given.
func NewLogger(opts Options) *slog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(writer, ho)
	} else {
		h = slog.NewTextHandler(writer, ho)
	}
	lg := slog.New(h)
	if c := strings.TrimSpace(opts.Component); c != "" {
		lg = lg.With("component", c)
	}
	return lg
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
