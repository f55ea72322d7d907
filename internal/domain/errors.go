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
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidKnowledgeSource = NewDomainError(ErrCodeValidation, "invalid knowledge source")
	ErrEmptyQuestion          = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrMissingRequiredField   = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrKnowledgeItemNotFound = NewDomainError(ErrCodeNotFound, "knowledge item not found")
	ErrSyncStateNotFound     = NewDomainError(ErrCodeNotFound, "sync state not found")
	ErrBriefNotArchived      = NewDomainError(ErrCodeNotFound, "no archived brief available")
)

// Degraded-provider errors. Callers typically fall back rather than
// surface these to the client.
var (
	ErrProviderNotConfigured = NewDomainError(ErrCodeUnavailable, "provider credential not configured")
	ErrStoreUnavailable      = NewDomainError(ErrCodeUnavailable, "knowledge store unavailable")
)
