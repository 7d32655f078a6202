package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. JSON output is for shipped
// environments; anything else gets the readable text handler. Source
// locations stay on in both so till-side errors can be traced.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
