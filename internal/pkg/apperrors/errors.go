package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Identity errors
var (
	ErrUserNotFound       = &CustomError{Err: ErrResourceNotFound, Message: "user not found"}
	ErrEmailAlreadyExists = &CustomError{Err: ErrConflict, Message: "email already exists", Field: "email"}
	ErrCustomRoleNotFound = &CustomError{Err: ErrResourceNotFound, Message: "role not found"}
	ErrCustomRoleExists   = &CustomError{Err: ErrConflict, Message: "a role with this name or binding already exists"}
)

// Form errors
var (
	ErrFormNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "form not found"}
	ErrResponseNotFound = &CustomError{Err: ErrResourceNotFound, Message: "response not found"}
	ErrFormInactive     = &CustomError{Err: ErrValidationFailed, Message: "form is not accepting responses", Field: "form"}
)

// Library errors
var (
	ErrBookNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "book not found"}
	ErrCategoryNotFound = &CustomError{Err: ErrResourceNotFound, Message: "category not found", Field: "category"}
	ErrGradeNotFound    = &CustomError{Err: ErrResourceNotFound, Message: "grade not found", Field: "grade"}
	ErrMissingFile      = &CustomError{Err: ErrValidationFailed, Message: "No file was uploaded", Field: "file"}
	ErrFileTooLarge     = &CustomError{Err: ErrValidationFailed, Message: "File size too large. Maximum size is 50MB", Field: "file"}
	ErrNotPDF           = &CustomError{Err: ErrValidationFailed, Message: "This book is not in PDF format", Field: "file_type"}
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(field, message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError reports a failed field-level validation.
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
