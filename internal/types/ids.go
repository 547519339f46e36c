package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is the correlation handle handed out by the event tracer: the value
// returned when a span opens and presented back when it closes. It wraps a
// UUID string.
type ID string

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.New().String())
}

// ParseID validates s as a UUID and returns it in canonical form.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID format: %w", err)
	}

	return ID(parsed.String()), nil
}

// Validate reports an error when the ID is empty or not a UUID.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid UUID format: %w", err)
	}

	return nil
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}
