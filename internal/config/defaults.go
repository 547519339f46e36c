package config

import "time"

// DefaultConfig returns a Config with sensible default values: the in-process
// memory backend and the mock completion provider, so a fresh install can run
// a query end to end without credentials.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Kind: "memory",
			Neo4j: Neo4jConfig{
				URI:      "neo4j://localhost:7687",
				Username: "neo4j",
				Database: "neo4j",
				Timeout:  30 * time.Second,
			},
			Memory: MemoryConfig{
				Schema:   "(actor)-[:starred_in]->(movie)",
				Response: "",
			},
		},
		LLM: LLMConfig{
			Provider:    "mock",
			Model:       "",
			MaxTokens:   512,
			Temperature: 0.0,
		},
		Engine: EngineConfig{
			QueryTimeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "kgraph",
			SampleRate:  1.0,
		},
	}
}
