package engine

import (
	"errors"
	"fmt"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// NewGenerationError wraps a completion capability failure during query
// generation. Surfaced to the caller after span cleanup; never retried here.
func NewGenerationError(cause error) *types.KGraphError {
	return types.WrapError(types.GENERATION_FAILED, "query generation failed", cause)
}

// NewBackendQueryError wraps a backend rejection or execution failure,
// including dialect-mismatch syntax errors: generated-query validity is
// never checked beforehand, so this is the most likely failure.
func NewBackendQueryError(query string, cause error) *types.KGraphError {
	return types.WrapError(types.BACKEND_QUERY_FAILED,
		fmt.Sprintf("backend failed to execute generated query: %s", query), cause)
}

// NewSynthesisError wraps an answer synthesis failure. If the synthesizer
// already produced a coded synthesis error it is passed through unchanged.
func NewSynthesisError(cause error) error {
	var kgErr *types.KGraphError
	if errors.As(cause, &kgErr) && kgErr.Code == types.SYNTHESIS_FAILED {
		return cause
	}
	return types.WrapError(types.SYNTHESIS_FAILED, "answer synthesis failed", cause)
}
