package errors

import (
	stderrors "errors"
	"fmt"
)

// LexError is the structured error type for lexrag.
type LexError struct {
	// Code is the unique error code (e.g., "ERR_403_INVALID_LIMIT").
	Code string

	// Message is the human-readable error message.
	Message string

	Category Category
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error, if any.
	Cause error

	// Suggestion is an actionable hint for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LexError) Unwrap() error {
	return e.Cause
}

// Is matches another LexError by code, so errors.Is works against sentinels
// built with New.
func (e *LexError) Is(target error) bool {
	if t, ok := target.(*LexError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail and returns the error for chaining.
func (e *LexError) WithDetail(key, value string) *LexError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the user hint and returns the error for chaining.
func (e *LexError) WithSuggestion(suggestion string) *LexError {
	e.Suggestion = suggestion
	return e
}

// New creates a LexError. Category and severity are derived from the code.
func New(code string, message string, cause error) *LexError {
	return &LexError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a LexError from an existing error, reusing its message.
func Wrap(code string, err error) *LexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration error.
func ConfigError(message string, cause error) *LexError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *LexError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *LexError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first LexError in err's chain.
func As(err error) (*LexError, bool) {
	var le *LexError
	if stderrors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// IsFatal reports whether err carries fatal severity.
func IsFatal(err error) bool {
	le, ok := As(err)
	return ok && le.Severity == SeverityFatal
}

// GetCode extracts the error code, or "" if err is not a LexError.
func GetCode(err error) string {
	if le, ok := As(err); ok {
		return le.Code
	}
	return ""
}

// GetCategory extracts the category, or "" if err is not a LexError.
func GetCategory(err error) Category {
	if le, ok := As(err); ok {
		return le.Category
	}
	return ""
}
