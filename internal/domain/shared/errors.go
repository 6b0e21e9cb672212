package shared

import "errors"

// Error codes for the business failure taxonomy. Callers branch on the code
// to produce the correct user-facing response; infrastructure failures are
// plain errors and never carry a code.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION"
	CodeConcurrency  = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a NOT_FOUND domain error
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewUnauthorizedError creates an UNAUTHORIZED domain error
func NewUnauthorizedError(message string) *DomainError {
	return NewDomainError(CodeUnauthorized, message)
}

// NewConflictError creates a CONFLICT domain error
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// NewValidationError creates a VALIDATION domain error
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// ErrorCode returns the domain error code for err, or "" if err is not a
// DomainError (i.e. an infrastructure failure).
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DomainError with the given code
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrency, "Resource was modified by another process")
	ErrAlreadyExists       = NewDomainError(CodeConflict, "Resource already exists")
)
