package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/kgraph-ai/kgraph/internal/prompt"
	"github.com/kgraph-ai/kgraph/internal/types"
)

// LangChainCompleter adapts a langchaingo model to the Completer interface.
type LangChainCompleter struct {
	name        string
	model       llms.Model
	healthModel string
	maxTokens   int
	temperature float64
}

// NewLangChainCompleter wraps an existing langchaingo model.
func NewLangChainCompleter(name string, model llms.Model, cfg Config) *LangChainCompleter {
	return &LangChainCompleter{
		name:        name,
		model:       model,
		healthModel: cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// NewOpenAICompleter builds a Completer backed by the OpenAI chat API
// (or any OpenAI-compatible endpoint when BaseURL is set).
func NewOpenAICompleter(cfg Config) (*LangChainCompleter, error) {
	opts := []openai.Option{}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "failed to build openai client", err)
	}
	return NewLangChainCompleter(ProviderOpenAI, model, cfg), nil
}

// NewOllamaCompleter builds a Completer backed by a local Ollama server.
func NewOllamaCompleter(cfg Config) (*LangChainCompleter, error) {
	opts := []ollama.Option{}
	if cfg.Model != "" {
		opts = append(opts, ollama.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	model, err := ollama.New(opts...)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "failed to build ollama client", err)
	}
	return NewLangChainCompleter(ProviderOllama, model, cfg), nil
}

// Name returns the provider name.
func (c *LangChainCompleter) Name() string {
	return c.name
}

// Predict renders the template and sends it to the model as a single prompt.
// The model's raw text output is returned unmodified; no post-parsing and no
// validation that the output is a syntactically valid query. Dialect errors
// surface later, when the backend rejects the query.
func (c *LangChainCompleter) Predict(ctx context.Context, tmpl *prompt.Template, vars map[string]any) (string, error) {
	rendered, err := tmpl.Render(vars)
	if err != nil {
		return "", err
	}

	callOpts := []llms.CallOption{}
	if c.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(c.maxTokens))
	}
	if c.temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(c.temperature))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, rendered, callOpts...)
	if err != nil {
		return "", NewCompletionError(c.name, err)
	}
	return out, nil
}

// Health reports the provider as healthy; connectivity problems surface on
// the first Predict call.
func (c *LangChainCompleter) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy(fmt.Sprintf("%s (%s) configured", c.name, c.healthModel))
}

// NewCompleter builds a Completer from configuration.
func NewCompleter(cfg Config) (Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAICompleter(cfg)
	case ProviderOllama:
		return NewOllamaCompleter(cfg)
	case ProviderMock:
		opts := []MockOption{}
		if cfg.MaxTokens > 0 {
			opts = append(opts, WithMaxTokens(cfg.MaxTokens))
		}
		return NewMockCompleter(opts...), nil
	default:
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "unknown llm provider: "+cfg.Provider)
	}
}
