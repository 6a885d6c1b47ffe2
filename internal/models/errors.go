package models

import "errors"

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// FieldError describes a problem with a single request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError is returned when input is missing or malformed.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func NewValidationError(msg string, flds ...FieldError) error {
	return &ValidationError{Message: msg, Fields: flds}
}

func (e *ValidationError) Error() string {
	return e.Message
}
