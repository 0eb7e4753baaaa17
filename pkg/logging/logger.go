// Package logging holds the package-level structured logger shared by the
// keyedkit engines and binaries.
//
// The logger discards everything until Init is called, so library users pay
// only for a disabled-level check on the hot paths.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the global logger instance. It discards all output by default.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Level   slog.Level // Minimum log level
	Format  string     // "json" or "text" (default)
	Output  io.Writer  // Destination; defaults to stderr
}

// Init configures logging. Call from main() before any log calls.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	L = slog.New(handler)
}

// ParseLevel maps a flag value (debug, info, warn, error) to a slog level.
// Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// WithContainer creates a logger with container context.
//
//	log := logging.WithContainer("users")
//	log.Debug("hash resize", "from", 8, "to", 16)
func WithContainer(name string) *slog.Logger {
	return L.With("container", name)
}
