package observability

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// InitLogger creates a structured JSON logger on stderr with trace and run
// correlation. Verbose lowers the threshold from Warn to Info.
func InitLogger(verbose bool) *slog.Logger {
	return NewLogger(os.Stderr, verbose)
}

// NewLogger is InitLogger writing to w.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	handler := &traceHandler{
		inner: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}),
	}
	return slog.New(handler)
}

// traceHandler wraps a slog.Handler to inject trace_id, span_id and run_id
// from context.
type traceHandler struct {
	inner slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if runID := RunIDFrom(ctx); runID != "" {
		r.AddAttrs(slog.String("run_id", runID))
	}
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.inner.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{inner: h.inner.WithGroup(name)}
}
