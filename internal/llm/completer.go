package llm

import (
	"context"

	"github.com/kgraph-ai/kgraph/internal/prompt"
	"github.com/kgraph-ai/kgraph/internal/types"
)

// Completer is the completion capability consumed by the query engine.
// Predict fills the template's slots and returns the model's raw text output.
//
// Predict blocks until the completion finishes or ctx is done; callers that
// want non-blocking behavior invoke it from their own goroutine. All
// implementations must be safe for concurrent use.
type Completer interface {
	// Name returns the provider name (e.g. "openai", "ollama", "mock").
	Name() string

	// Predict renders tmpl with vars, sends the result to the model and
	// returns the raw completion text unmodified. Implementations that
	// dispatch on the template kind must return a PROMPT_KIND_UNSUPPORTED
	// error for kinds they cannot serve.
	Predict(ctx context.Context, tmpl *prompt.Template, vars map[string]any) (string, error)

	// Health checks the provider's availability.
	Health(ctx context.Context) types.HealthStatus
}

// Config selects and configures a completion provider.
type Config struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Validate checks that the configuration names a known provider.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderMock:
		return nil
	case "":
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "llm provider is required")
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "unknown llm provider: "+c.Provider)
	}
}

// Supported provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"
)
