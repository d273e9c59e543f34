package contract

import (
	"errors"
	"fmt"
	"strings"
)

// Category identifies which contract of a unit was violated.
type Category string

const (
	// CategoryInput indicates a task or tool input contract violation.
	CategoryInput Category = "input"
	// CategoryOutput indicates a task output contract violation.
	CategoryOutput Category = "output"
	// CategoryTool indicates an AI tool argument contract violation.
	CategoryTool Category = "tool"
)

// ValidationError reports every violation of a contract, never a partial
// list. Subject names the task or tool whose contract was violated.
type ValidationError struct {
	Subject    string
	Category   Category
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return fmt.Sprintf("%s validation failed for %q: %s", e.Category, e.Subject, strings.Join(msgs, "; "))
}

// NewValidationError creates a ValidationError.
func NewValidationError(subject string, category Category, violations []Violation) *ValidationError {
	return &ValidationError{
		Subject:    subject,
		Category:   category,
		Violations: violations,
	}
}

// IsValidationError checks if the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError returns the ValidationError in err's chain, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
