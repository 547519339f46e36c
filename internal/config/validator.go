package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// Validator validates configuration values.
type Validator interface {
	Validate(cfg *Config) error
}

// validatorImpl implements Validator using go-playground/validator.
type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator creates a Validator instance.
func NewValidator() Validator {
	return &validatorImpl{validate: validator.New()}
}

// Validate checks struct tags plus the cross-field rules the tags cannot
// express, and returns one message listing every violation.
func (v *validatorImpl) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	var messages []string

	if err := v.validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "validation error", err)
		}
		for _, e := range validationErrs {
			messages = append(messages, formatValidationError(e))
		}
	}

	if cfg.Backend.Kind == "neo4j" {
		if cfg.Backend.Neo4j.URI == "" {
			messages = append(messages, "backend.neo4j.uri is required when backend.kind is 'neo4j'")
		}
		if cfg.Backend.Neo4j.Username == "" {
			messages = append(messages, "backend.neo4j.username is required when backend.kind is 'neo4j'")
		}
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
		messages = append(messages, "llm.api_key is required when llm.provider is 'openai'")
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		messages = append(messages, "tracing.endpoint is required when tracing is enabled")
	}

	if len(messages) > 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(messages, "\n  - ")))
	}
	return nil
}

// formatValidationError turns a struct-tag violation into a readable message.
func formatValidationError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	field = strings.TrimPrefix(field, "config.")

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", field, e.Param(), e.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", field, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation rule %q", field, e.Tag())
	}
}
