package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors. Classify with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
)

const (
	CodeValidation   = "VALIDATION"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
	CodeConfig       = "CONFIG_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func ValidationErrorf(format string, args ...any) error {
	return NewAppError(CodeValidation, fmt.Sprintf(format, args...), ErrValidation)
}

func NotFoundErrorf(format string, args ...any) error {
	return NewAppError(CodeNotFound, fmt.Sprintf(format, args...), ErrNotFound)
}

func ConflictErrorf(format string, args ...any) error {
	return NewAppError(CodeConflict, fmt.Sprintf(format, args...), ErrConflict)
}

func ForbiddenErrorf(format string, args ...any) error {
	return NewAppError(CodeForbidden, fmt.Sprintf(format, args...), ErrForbidden)
}

func UnauthorizedErrorf(format string, args ...any) error {
	return NewAppError(CodeUnauthorized, fmt.Sprintf(format, args...), ErrUnauthorized)
}

// InternalErrorf keeps the underlying cause reachable through errors.Is/As.
func InternalErrorf(cause error, format string, args ...any) error {
	return NewAppError(CodeInternal, fmt.Sprintf(format, args...), errors.Join(ErrInternal, cause))
}

// MessageOf returns the caller-facing message of an AppError, or fallback.
func MessageOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
