// Package observability wires structured logging and OpenTelemetry trace
// export for kgraph. The engine's event tracer bridges its query and
// retrieve spans onto the provider initialised here.
package observability

import (
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/kgraph-ai/kgraph/internal/config"
)

// NewLogger builds a slog.Logger from the logging configuration, writing to w.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// WithTraceContext returns the logger with trace_id and span_id fields when
// the span context is valid, so log lines correlate with exported spans.
func WithTraceContext(logger *slog.Logger, spanCtx trace.SpanContext) *slog.Logger {
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
