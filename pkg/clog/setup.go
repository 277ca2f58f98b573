package clog

import (
	"io"
	"log/slog"
)

// Setup installs the process-wide default logger: coloured text locally,
// JSON everywhere else, both wrapped in AttributesHandler.
func Setup(w io.Writer, env string, level slog.Level) *slog.Logger {
	var handler slog.Handler
	if env == "local" {
		handler = NewTextHandler(w, WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(NewAttributesHandler(handler))
	slog.SetDefault(logger)
	return logger
}
