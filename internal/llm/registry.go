package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// Registry manages completion provider registration, discovery, and health
// aggregation with thread-safe operations.
type Registry struct {
	mu         sync.RWMutex
	completers map[string]Completer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		completers: make(map[string]Completer),
	}
}

// Register adds a completer to the registry.
// Returns LLM_PROVIDER_ALREADY_EXISTS if one with the same name is present,
// and LLM_PROVIDER_INVALID_INPUT if the completer is nil or unnamed.
func (r *Registry) Register(completer Completer) error {
	if completer == nil {
		return types.NewError(types.LLM_PROVIDER_INVALID_INPUT, "completer cannot be nil")
	}

	name := completer.Name()
	if name == "" {
		return types.NewError(types.LLM_PROVIDER_INVALID_INPUT, "completer name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.completers[name]; exists {
		return types.NewError(types.LLM_PROVIDER_ALREADY_EXISTS,
			fmt.Sprintf("completer %q already registered", name))
	}

	r.completers[name] = completer
	return nil
}

// Unregister removes a completer by name.
// Returns LLM_PROVIDER_NOT_FOUND if it doesn't exist.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.completers[name]; !exists {
		return types.NewError(types.LLM_PROVIDER_NOT_FOUND,
			fmt.Sprintf("completer %q not found", name))
	}

	delete(r.completers, name)
	return nil
}

// Get retrieves a completer by name.
// Returns LLM_PROVIDER_NOT_FOUND if it doesn't exist.
func (r *Registry) Get(name string) (Completer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	completer, exists := r.completers[name]
	if !exists {
		return nil, types.NewError(types.LLM_PROVIDER_NOT_FOUND,
			fmt.Sprintf("completer %q not found", name))
	}

	return completer, nil
}

// List returns the names of all registered completers, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.completers))
	for name := range r.completers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health returns the overall health of the registry:
// healthy if all completers are healthy, degraded if some are unhealthy,
// unhealthy if all are unhealthy or none are registered.
func (r *Registry) Health(ctx context.Context) types.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.completers) == 0 {
		return types.Unhealthy("no completers registered")
	}

	healthy := 0
	total := len(r.completers)
	for _, completer := range r.completers {
		if completer.Health(ctx).IsHealthy() {
			healthy++
		}
	}

	switch {
	case healthy == total:
		return types.Healthy(fmt.Sprintf("all %d completers healthy", total))
	case healthy == 0:
		return types.Unhealthy(fmt.Sprintf("all %d completers unhealthy", total))
	default:
		return types.Degraded(fmt.Sprintf("%d/%d completers healthy", healthy, total))
	}
}
