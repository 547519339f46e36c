package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// Loader loads configuration from YAML files.
type Loader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct {
	validator Validator
}

// NewLoader creates a Loader backed by the given validator.
func NewLoader(validator Validator) Loader {
	return &viperLoader{validator: validator}
}

// Load reads the file at path, interpolates ${VAR_NAME} references from the
// environment, overlays the result on DefaultConfig and validates it.
func (l *viperLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	interpolate(cfg)

	if err := l.validator.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDefaults behaves like Load, but a missing file yields the default
// configuration instead of an error.
func (l *viperLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := l.validator.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return l.Load(path)
}

// Write serialises cfg as YAML to path. Used by `kgraph config init`.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return types.WrapError(types.CONFIG_PARSE_FAILED, "failed to serialise config", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("failed to write config file %s", path), err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate resolves ${VAR_NAME} references in the string fields that may
// carry secrets or deployment-specific values.
func interpolate(cfg *Config) {
	cfg.Backend.Neo4j.URI = interpolateString(cfg.Backend.Neo4j.URI)
	cfg.Backend.Neo4j.Username = interpolateString(cfg.Backend.Neo4j.Username)
	cfg.Backend.Neo4j.Password = interpolateString(cfg.Backend.Neo4j.Password)
	cfg.Backend.Neo4j.Database = interpolateString(cfg.Backend.Neo4j.Database)
	cfg.LLM.BaseURL = interpolateString(cfg.LLM.BaseURL)
	cfg.LLM.APIKey = interpolateString(cfg.LLM.APIKey)
	cfg.Tracing.Endpoint = interpolateString(cfg.Tracing.Endpoint)
}

// interpolateString replaces ${VAR_NAME} with the environment variable value.
// Unset variables leave the reference untouched.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if value := os.Getenv(name); value != "" {
			return value
		}
		return match
	})
}
