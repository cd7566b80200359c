package deviceconfig

import (
	"errors"
	"fmt"
)

// ValidationError reports a setting value the device would reject.
// Transport failures are *session.SessionError values and pass through
// the client unchanged.
type ValidationError struct {
	Key     string // Configuration key (e.g., "eotf"), empty for non-key checks
	Message string // Human-readable reason
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("Validation Error: %s", e.Message)
	}
	return fmt.Sprintf("Validation Error: %s: %s", e.Key, e.Message)
}

// NewValidationError creates a validation error for a key
func NewValidationError(key, message string) *ValidationError {
	return &ValidationError{Key: key, Message: message}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
