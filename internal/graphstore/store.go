package graphstore

import (
	"context"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// Kind identifies the graph backend flavor in use. The kind selects which
// query dialect prompt the engine fills, so the set is closed and fixed at
// compile time.
type Kind string

const (
	// KindNebulaGraph is a NebulaGraph backend speaking the nGQL Cypher dialect.
	KindNebulaGraph Kind = "nebulagraph"

	// KindNeo4j is a Neo4j backend speaking standard Cypher.
	KindNeo4j Kind = "neo4j"

	// KindMemory is the in-process fixture store used in tests and demos.
	// It reports whichever dialect kind it was configured to mimic, so this
	// constant only appears when no mimic kind is set.
	KindMemory Kind = "memory"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is a valid value.
func (k Kind) IsValid() bool {
	switch k {
	case KindNebulaGraph, KindNeo4j, KindMemory:
		return true
	default:
		return false
	}
}

// GraphStore is the graph backend capability consumed by the query engine.
// The engine treats both the schema text and query results as opaque strings;
// no result shape is imposed.
//
// Thread-safety: all implementations must be safe for concurrent access.
type GraphStore interface {
	// Kind returns the backend flavor, used for dialect prompt selection.
	Kind() Kind

	// Schema returns a text description of the store's node and edge types
	// and their properties. When refresh is false implementations may return
	// a cached value; when true they must re-introspect the live store.
	Schema(ctx context.Context, refresh bool) (string, error)

	// Query executes a query written in the store's dialect and returns the
	// raw response as text. Queries are executed exactly as given; syntax
	// errors from generated queries surface here.
	Query(ctx context.Context, query string) (string, error)

	// Health returns the current health status of the store connection.
	Health(ctx context.Context) types.HealthStatus

	// Close releases the underlying connection. Should be called during
	// graceful shutdown.
	Close(ctx context.Context) error
}
