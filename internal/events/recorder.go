package events

import (
	"context"
	"sync"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// Phase marks whether a recorded entry is a span start or end.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseEnd   Phase = "end"
)

// Entry is one recorded tracer call in arrival order.
type Entry struct {
	Phase   Phase
	Kind    EventKind
	Payload Payload
	ID      types.ID
}

// Recorder is a Tracer that keeps every start/end call in order, on top of
// a live open-span table. Tests use it to assert span pairing, nesting and
// payload sequences; the sync and async paths must produce identical
// recordings for identical inputs.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	open    map[types.ID]SpanRecord
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		open: make(map[types.ID]SpanRecord),
	}
}

// OnEventStart records a start entry and opens the span.
func (r *Recorder) OnEventStart(ctx context.Context, kind EventKind, payload Payload) types.ID {
	id := types.NewID()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{Phase: PhaseStart, Kind: kind, Payload: payload, ID: id})
	r.open[id] = SpanRecord{ID: id, Kind: kind, StartPayload: payload}
	return id
}

// OnEventEnd records an end entry and closes the span.
func (r *Recorder) OnEventEnd(ctx context.Context, kind EventKind, payload Payload, id types.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{Phase: PhaseEnd, Kind: kind, Payload: payload, ID: id})
	delete(r.open, id)
}

// OpenSpans lists spans that were started but never ended.
func (r *Recorder) OpenSpans() []SpanRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]SpanRecord, 0, len(r.open))
	for _, rec := range r.open {
		records = append(records, rec)
	}
	return records
}

// Entries returns a copy of all recorded calls in order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
