package events

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// EventKind classifies a traced span.
type EventKind string

const (
	// EventQuery wraps one full orchestration call, from question to answer.
	EventQuery EventKind = "query"

	// EventRetrieve wraps the backend execution sub-step, nested inside an
	// EventQuery span.
	EventRetrieve EventKind = "retrieve"
)

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Payload carries the structured data attached to a span start or end.
type Payload map[string]any

// Well-known payload keys.
const (
	PayloadQueryStr = "query_str"
	PayloadResponse = "response"
	PayloadError    = "error"
)

// SpanRecord describes a currently-open span, for diagnostic listing.
type SpanRecord struct {
	ID           types.ID
	Kind         EventKind
	StartPayload Payload
	StartedAt    time.Time
}

// Tracer is the paired start/end event sink the engine reports to.
//
// A span's lifecycle is open then exactly one close; the ID returned by
// OnEventStart must be presented unchanged to OnEventEnd. Spans may nest
// (outer query, inner retrieve) and concurrent callers may open and close
// distinct spans simultaneously; implementations must keep their records
// from corrupting each other.
type Tracer interface {
	// OnEventStart opens a span of the given kind and returns its
	// correlation ID.
	OnEventStart(ctx context.Context, kind EventKind, payload Payload) types.ID

	// OnEventEnd closes the span identified by id with a result payload.
	// Closing happens on the error path too, carrying an error indicator,
	// before the error propagates.
	OnEventEnd(ctx context.Context, kind EventKind, payload Payload, id types.ID)

	// OpenSpans lists spans that have been opened but not yet closed,
	// ordered by start time. Useful for detecting dangling spans.
	OpenSpans() []SpanRecord
}

// DefaultTracer implements Tracer with a mutex-guarded table of open spans.
// It is constructed explicitly and passed to the engine rather than living
// as process-global state; its lifetime is tied to the engine's.
//
// When an OpenTelemetry tracer is attached, every start opens an otel span
// held in the table and every end closes it, with error payloads recorded
// as error status.
type DefaultTracer struct {
	mu     sync.Mutex
	open   map[types.ID]*openSpan
	logger *slog.Logger
	otel   oteltrace.Tracer
}

type openSpan struct {
	record   SpanRecord
	otelSpan oteltrace.Span
}

// TracerOption configures a DefaultTracer.
type TracerOption func(*DefaultTracer)

// WithLogger sets the logger used for span lifecycle debug logging.
func WithLogger(logger *slog.Logger) TracerOption {
	return func(t *DefaultTracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithOTelTracer bridges spans to an OpenTelemetry tracer.
func WithOTelTracer(tracer oteltrace.Tracer) TracerOption {
	return func(t *DefaultTracer) {
		t.otel = tracer
	}
}

// NewTracer creates a DefaultTracer.
func NewTracer(opts ...TracerOption) *DefaultTracer {
	t := &DefaultTracer{
		open:   make(map[types.ID]*openSpan),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnEventStart opens a span and returns its correlation ID.
func (t *DefaultTracer) OnEventStart(ctx context.Context, kind EventKind, payload Payload) types.ID {
	id := types.NewID()
	span := &openSpan{
		record: SpanRecord{
			ID:           id,
			Kind:         kind,
			StartPayload: payload,
			StartedAt:    time.Now(),
		},
	}

	if t.otel != nil {
		_, otelSpan := t.otel.Start(ctx, kind.String(),
			oteltrace.WithAttributes(attribute.String("event.id", id.String())))
		span.otelSpan = otelSpan
	}

	t.mu.Lock()
	t.open[id] = span
	t.mu.Unlock()

	t.logger.Debug("event start", "kind", kind, "event_id", id)
	return id
}

// OnEventEnd closes the span identified by id. An unknown or already-closed
// id is logged and otherwise ignored; close is cleanup and must not fail.
func (t *DefaultTracer) OnEventEnd(ctx context.Context, kind EventKind, payload Payload, id types.ID) {
	t.mu.Lock()
	span, ok := t.open[id]
	if ok {
		delete(t.open, id)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Warn("event end for unknown span", "kind", kind, "event_id", id)
		return
	}

	duration := time.Since(span.record.StartedAt)

	if span.otelSpan != nil {
		if errVal, failed := payload[PayloadError]; failed {
			span.otelSpan.SetStatus(codes.Error, "event failed")
			span.otelSpan.SetAttributes(attribute.String("event.error", toString(errVal)))
		}
		span.otelSpan.End()
	}

	t.logger.Debug("event end", "kind", kind, "event_id", id, "duration", duration)
}

// OpenSpans lists currently-open spans ordered by start time.
func (t *DefaultTracer) OpenSpans() []SpanRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make([]SpanRecord, 0, len(t.open))
	for _, span := range t.open {
		records = append(records, span.record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})
	return records
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return ""
}

// NopTracer discards all events. It still hands out valid correlation IDs
// so callers never special-case the disabled path.
type NopTracer struct{}

// OnEventStart returns a fresh ID and records nothing.
func (NopTracer) OnEventStart(ctx context.Context, kind EventKind, payload Payload) types.ID {
	return types.NewID()
}

// OnEventEnd records nothing.
func (NopTracer) OnEventEnd(ctx context.Context, kind EventKind, payload Payload, id types.ID) {}

// OpenSpans always returns nil.
func (NopTracer) OpenSpans() []SpanRecord { return nil }
