package observability

import (
	"io"
	"log/slog"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/quakesense-service/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT. Output
// goes to stdout and the logger becomes the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "quakesense")
}

// NewLoggerTo is NewLogger writing to w instead of stdout. quakectl passes
// os.Stderr so logs stay out of the tables and JSON it prints; the shared
// constructor is fixed to stdout.
func NewLoggerTo(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("service", "quakesense")
}
