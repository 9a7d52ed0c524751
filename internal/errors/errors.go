package errors

import (
	"fmt"
	"strings"
)

// ValidationError collects field-level validation failures so a caller can
// report all of them at once instead of stopping at the first.
type ValidationError struct {
	failures []string
}

// ValidationErrs returns an empty collector.
func ValidationErrs() *ValidationError {
	return &ValidationError{}
}

// Add records a failure for the named field.
func (v *ValidationError) Add(field, msg string) {
	v.failures = append(v.failures, fmt.Sprintf("%s: %s", field, msg))
}

// Err returns the collected failures as a single error, or nil when every
// check passed.
func (v *ValidationError) Err() error {
	if len(v.failures) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed: %s", strings.Join(v.failures, "; "))
}
