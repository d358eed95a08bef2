package errors

import (
	"fmt"
)

// NodeError is the structured error type for nodeguard.
// It provides rich context for error handling, logging, and user presentation.
type NodeError struct {
	// Code is the unique error code (e.g., "ERR_601_BOOTSTRAP_CHECKS_FAILED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Bootstrap, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Causes holds independent sub-causes of an aggregate error, in order.
	Causes []error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause followed by any sub-causes,
// so errors.Is and errors.As walk all of them.
func (e *NodeError) Unwrap() []error {
	if e.Cause == nil && len(e.Causes) == 0 {
		return nil
	}
	errs := make([]error, 0, 1+len(e.Causes))
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return append(errs, e.Causes...)
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with NodeError.
func (e *NodeError) Is(target error) bool {
	if t, ok := target.(*NodeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *NodeError) WithDetail(key, value string) *NodeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *NodeError) WithSuggestion(suggestion string) *NodeError {
	e.Suggestion = suggestion
	return e
}

// WithCauses appends independent sub-causes.
func (e *NodeError) WithCauses(causes ...error) *NodeError {
	e.Causes = append(e.Causes, causes...)
	return e
}

// New creates a new NodeError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *NodeError {
	return &NodeError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a NodeError from an existing error.
// The error's message becomes the NodeError message.
func Wrap(code string, err error) *NodeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *NodeError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *NodeError {
	return New(ErrCodeFileNotFound, message, cause)
}

// NetworkError creates a network-related error.
func NetworkError(message string, cause error) *NodeError {
	return New(ErrCodeBindFailed, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *NodeError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *NodeError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors must abort startup.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if ne, ok := err.(*NodeError); ok {
		return ne.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a NodeError.
// Returns empty string if not a NodeError.
func GetCode(err error) string {
	if ne, ok := err.(*NodeError); ok {
		return ne.Code
	}
	return ""
}

// CauseMessages returns the messages of the sub-causes of err, in order.
// Sub-causes that are NodeErrors contribute their Message; others their Error().
func CauseMessages(err error) []string {
	ne, ok := err.(*NodeError)
	if !ok || len(ne.Causes) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(ne.Causes))
	for _, c := range ne.Causes {
		if cne, ok := c.(*NodeError); ok {
			msgs = append(msgs, cne.Message)
			continue
		}
		msgs = append(msgs, c.Error())
	}
	return msgs
}
