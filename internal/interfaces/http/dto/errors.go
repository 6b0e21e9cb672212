package dto

import (
	"net/http"

	"github.com/b2bmarket/backend/internal/domain/shared"
)

// Error codes used outside the domain taxonomy
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// UNAUTHORIZED is an ownership failure on an authenticated caller, so it
// maps to 403 rather than 401.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:     http.StatusNotFound,
	shared.CodeUnauthorized: http.StatusForbidden,
	shared.CodeConflict:     http.StatusConflict,
	shared.CodeConcurrency:  http.StatusConflict,
	shared.CodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeUnauthenticated:  http.StatusUnauthorized,
	ErrCodeInternal:         http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
