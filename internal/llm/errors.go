package llm

import (
	"fmt"

	"github.com/kgraph-ai/kgraph/internal/prompt"
	"github.com/kgraph-ai/kgraph/internal/types"
)

// NewCompletionError creates a completion failure error wrapping the
// provider's underlying error. Retryable: provider outages and timeouts are
// usually transient, but the engine itself never retries.
func NewCompletionError(provider string, cause error) *types.KGraphError {
	return &types.KGraphError{
		Code:      types.LLM_COMPLETION_FAILED,
		Message:   fmt.Sprintf("completion failed on provider %q", provider),
		Cause:     cause,
		Retryable: true,
	}
}

// NewUnsupportedKindError creates the distinguishable error a provider
// returns when asked to serve a prompt kind it does not understand.
func NewUnsupportedKindError(provider string, kind prompt.Kind) *types.KGraphError {
	return types.NewError(types.PROMPT_KIND_UNSUPPORTED,
		fmt.Sprintf("provider %q does not support prompt kind %q", provider, kind))
}
