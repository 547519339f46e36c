package graphstore

import (
	"fmt"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// NewConnectionError creates a store connection failure error.
// This is retryable as network issues may be transient.
func NewConnectionError(message string, cause error) *types.KGraphError {
	return &types.KGraphError{
		Code:      types.STORE_CONNECTION_FAILED,
		Message:   message,
		Cause:     cause,
		Retryable: true,
	}
}

// NewQueryError creates a query execution error. This is non-retryable:
// the query text itself is the most likely culprit, since generated queries
// are executed without prior syntax validation.
func NewQueryError(message string, cause error) *types.KGraphError {
	return &types.KGraphError{
		Code:      types.STORE_QUERY_FAILED,
		Message:   message,
		Cause:     cause,
		Retryable: false,
	}
}

// NewSchemaError creates a schema introspection error.
func NewSchemaError(message string, cause error) *types.KGraphError {
	return &types.KGraphError{
		Code:      types.STORE_SCHEMA_FAILED,
		Message:   message,
		Cause:     cause,
		Retryable: true,
	}
}

// NewUnknownKindError creates a configuration error for an unsupported
// backend kind. Fatal at construction time, never retried.
func NewUnknownKindError(kind Kind) *types.KGraphError {
	return types.NewError(
		types.CONFIG_MISSING_BACKEND,
		fmt.Sprintf("unknown graph store kind: %q", kind),
	)
}
