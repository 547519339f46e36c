// Package config loads and validates the kgraph configuration file. The
// file is YAML; string values may reference environment variables with
// ${VAR_NAME} syntax, which is resolved at load time.
package config

import (
	"time"

	"github.com/kgraph-ai/kgraph/internal/graphstore"
	"github.com/kgraph-ai/kgraph/internal/llm"
)

// Config is the root configuration for kgraph.
type Config struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm" validate:"required"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// BackendConfig selects and configures the graph store backend.
type BackendConfig struct {
	// Kind is the backend kind: "neo4j" or "memory".
	Kind string `mapstructure:"kind" yaml:"kind" validate:"required,oneof=neo4j memory"`

	Neo4j  Neo4jConfig  `mapstructure:"neo4j" yaml:"neo4j,omitempty"`
	Memory MemoryConfig `mapstructure:"memory" yaml:"memory,omitempty"`
}

// Neo4jConfig contains connection settings for a Neo4j backend.
type Neo4jConfig struct {
	URI      string        `mapstructure:"uri" yaml:"uri"`
	Username string        `mapstructure:"username" yaml:"username"`
	Password string        `mapstructure:"password" yaml:"password"`
	Database string        `mapstructure:"database" yaml:"database"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MemoryConfig configures the in-process fixture backend, used for offline
// demos and smoke tests.
type MemoryConfig struct {
	Schema   string `mapstructure:"schema" yaml:"schema"`
	Response string `mapstructure:"response" yaml:"response"`
}

// LLMConfig configures the completion provider. It mirrors llm.Config and
// converts to it with ToProviderConfig.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider" validate:"required,oneof=openai ollama mock"`
	Model       string  `mapstructure:"model" yaml:"model"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"min=0"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`
}

// EngineConfig contains orchestration settings.
type EngineConfig struct {
	// QueryTimeout bounds one orchestration call end to end.
	QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json text"`
}

// TracingConfig contains OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name,omitempty"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"min=0,max=1"`
	Insecure    bool    `mapstructure:"insecure" yaml:"insecure"`
}

// BackendKind returns the configured backend kind as a graphstore.Kind.
func (c *Config) BackendKind() graphstore.Kind {
	return graphstore.Kind(c.Backend.Kind)
}

// ToProviderConfig converts the LLM section into the provider config the
// llm package consumes.
func (c LLMConfig) ToProviderConfig() llm.Config {
	return llm.Config{
		Provider:    c.Provider,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}
