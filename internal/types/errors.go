package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for kgraph errors.
type ErrorCode string

// Configuration error codes. Configuration failures are fatal at
// construction time and are never retried.
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_MISSING_DIALECT   ErrorCode = "CONFIG_MISSING_DIALECT"
	CONFIG_MISSING_BACKEND   ErrorCode = "CONFIG_MISSING_BACKEND"
)

// Pipeline error codes, one per orchestration stage.
const (
	GENERATION_FAILED    ErrorCode = "GENERATION_FAILED"
	BACKEND_QUERY_FAILED ErrorCode = "BACKEND_QUERY_FAILED"
	SYNTHESIS_FAILED     ErrorCode = "SYNTHESIS_FAILED"
)

// Prompt error codes.
const (
	PROMPT_VAR_REQUIRED     ErrorCode = "PROMPT_VAR_REQUIRED"
	PROMPT_INVALID_TEMPLATE ErrorCode = "PROMPT_INVALID_TEMPLATE"
	PROMPT_KIND_UNSUPPORTED ErrorCode = "PROMPT_KIND_UNSUPPORTED"
)

// Completion provider error codes.
const (
	LLM_PROVIDER_NOT_FOUND      ErrorCode = "LLM_PROVIDER_NOT_FOUND"
	LLM_PROVIDER_ALREADY_EXISTS ErrorCode = "LLM_PROVIDER_ALREADY_EXISTS"
	LLM_PROVIDER_INVALID_INPUT  ErrorCode = "LLM_PROVIDER_INVALID_INPUT"
	LLM_COMPLETION_FAILED       ErrorCode = "LLM_COMPLETION_FAILED"
)

// Graph store error codes.
const (
	STORE_CONNECTION_FAILED ErrorCode = "STORE_CONNECTION_FAILED"
	STORE_QUERY_FAILED      ErrorCode = "STORE_QUERY_FAILED"
	STORE_SCHEMA_FAILED     ErrorCode = "STORE_SCHEMA_FAILED"
)

// Observability error codes.
const (
	TRACING_INIT_FAILED ErrorCode = "TRACING_INIT_FAILED"
)

// KGraphError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints for
// error handling logic.
type KGraphError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *KGraphError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *KGraphError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a KGraphError with the same Code.
func (e *KGraphError) Is(target error) bool {
	var kgErr *KGraphError
	if errors.As(target, &kgErr) {
		return e.Code == kgErr.Code
	}
	return false
}

// NewError creates a new non-retryable KGraphError with the given code and message.
func NewError(code ErrorCode, message string) *KGraphError {
	return &KGraphError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable KGraphError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *KGraphError {
	return &KGraphError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable KGraphError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *KGraphError {
	return &KGraphError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// HasCode reports whether err (or any error in its chain) is a KGraphError
// carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var kgErr *KGraphError
	if errors.As(err, &kgErr) {
		return kgErr.Code == code
	}
	return false
}
