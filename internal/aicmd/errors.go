package aicmd

import (
	"errors"
	"fmt"
)

// ToolNotFoundError reports a model-requested tool name with no registration.
type ToolNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// NewToolNotFoundError creates a ToolNotFoundError.
func NewToolNotFoundError(name string) *ToolNotFoundError {
	return &ToolNotFoundError{Name: name}
}

// IsToolNotFoundError checks if the error is a ToolNotFoundError.
func IsToolNotFoundError(err error) bool {
	var te *ToolNotFoundError
	return errors.As(err, &te)
}
