package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeLinkExpired         = "LINK_EXPIRED"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional, never sent to clients)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// NewUnauthenticatedError creates a new UNAUTHENTICATED error
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthenticated,
		Message: message,
		Status:  401,
	}
}

// NewForbiddenError creates a new FORBIDDEN error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeForbidden,
		Message: message,
		Status:  403,
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewConflictError creates a new CONFLICT error
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  409,
	}
}

// NewLinkExpiredError creates a new LINK_EXPIRED error
func NewLinkExpiredError() *AppError {
	return &AppError{
		Code:    ErrCodeLinkExpired,
		Message: "share link has expired",
		Status:  410,
	}
}

// NewUpstreamUnavailableError creates a new UPSTREAM_UNAVAILABLE error
func NewUpstreamUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpstreamUnavailable,
		Message: message,
		Status:  502,
		Err:     err,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}
