package graphstore

import (
	"context"
	"sync"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// MemoryStore is a deterministic in-process GraphStore used in tests and the
// `memory` CLI backend. It returns a fixed schema text and either a single
// canned response or a scripted map of query text to response.
//
// The store can mimic any backend kind, so dialect prompt selection is
// testable without a live driver for that backend.
type MemoryStore struct {
	mu        sync.Mutex
	kind      Kind
	schema    string
	response  string
	responses map[string]string
	queryErr  error
	schemaErr error

	queries       []string
	schemaFetches int
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMimicKind makes the store report the given backend kind.
func WithMimicKind(kind Kind) MemoryOption {
	return func(s *MemoryStore) {
		s.kind = kind
	}
}

// WithResponse sets the canned response returned for every query.
func WithResponse(response string) MemoryOption {
	return func(s *MemoryStore) {
		s.response = response
	}
}

// WithScriptedResponses sets per-query responses keyed by exact query text.
// Queries with no scripted entry fall back to the canned response.
func WithScriptedResponses(responses map[string]string) MemoryOption {
	return func(s *MemoryStore) {
		s.responses = responses
	}
}

// WithQueryError makes every query fail with the given error.
func WithQueryError(err error) MemoryOption {
	return func(s *MemoryStore) {
		s.queryErr = err
	}
}

// WithSchemaError makes schema fetches fail with the given error.
func WithSchemaError(err error) MemoryOption {
	return func(s *MemoryStore) {
		s.schemaErr = err
	}
}

// NewMemoryStore creates a MemoryStore with the given schema text.
func NewMemoryStore(schema string, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		kind:   KindMemory,
		schema: schema,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the configured (possibly mimicked) backend kind.
func (s *MemoryStore) Kind() Kind {
	return s.kind
}

// Schema returns the configured schema text.
func (s *MemoryStore) Schema(ctx context.Context, refresh bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemaFetches++
	if s.schemaErr != nil {
		return "", s.schemaErr
	}
	return s.schema, nil
}

// SetSchema replaces the schema text returned by subsequent fetches.
func (s *MemoryStore) SetSchema(schema string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = schema
}

// Query records the query and returns the scripted or canned response.
func (s *MemoryStore) Query(ctx context.Context, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, query)
	if s.queryErr != nil {
		return "", s.queryErr
	}
	if s.responses != nil {
		if resp, ok := s.responses[query]; ok {
			return resp, nil
		}
	}
	return s.response, nil
}

// Health always reports healthy.
func (s *MemoryStore) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("memory store")
}

// Close is a no-op.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Queries returns a copy of all queries executed so far.
func (s *MemoryStore) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}

// SchemaFetches returns how many times Schema has been called.
func (s *MemoryStore) SchemaFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaFetches
}
