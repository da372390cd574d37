package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnavailable   = "UNAVAILABLE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors surfaced to callers as user-actionable.
var (
	ErrNoSessionContent = NewDomainError(ErrCodeValidation, "no content available for this session, extract content from URLs first")
	ErrEmptyQuestion    = NewDomainError(ErrCodeValidation, "question must not be empty")
	ErrNoURLs           = NewDomainError(ErrCodeValidation, "at least one url is required")
	ErrTooManyURLs      = NewDomainError(ErrCodeValidation, "too many urls in one request")
)

// Not found errors
var (
	ErrSessionNotFound = NewDomainError(ErrCodeNotFound, "session not found")
)

// Extraction and answering failures
var (
	ErrNoExtractableContent = NewDomainError(ErrCodeValidation, "no content could be extracted from the provided urls")
	ErrCascadeExhausted     = NewDomainError(ErrCodeInternalError, "all answering strategies failed")
)
