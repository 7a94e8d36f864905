package meta

import "strings"

// ValidationError represents a content, format or schema violation.
//
// These are user-fixable errors (bad content keyword, malformed settings
// override, document failing schema validation) as opposed to infrastructure
// errors. They are always raised synchronously and never retried.
type ValidationError struct {
	// Message is a human-readable error description
	Message string

	// Details carries the underlying schema error list for diagnostics
	Details []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ":\n  " + strings.Join(e.Details, "\n  ")
}

// Validation creates a ValidationError with a plain message.
func Validation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ConfigurationError represents bad or missing global configuration.
//
// This is the one recoverable-by-design condition: export of the data file
// may still proceed without a metadata file, downgraded to a warning.
type ConfigurationError struct {
	// Message is a human-readable error description
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return e.Message
}
