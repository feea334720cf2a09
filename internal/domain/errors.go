package domain

import "errors"

// Error kinds surfaced to callers. Every failure returned by the service
// layer either wraps one of these or is an unexpected internal error.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error pairs an error kind with a message that is safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func InvalidInput(message string) error { return NewError(ErrInvalidInput, message) }
func NotFound(message string) error     { return NewError(ErrNotFound, message) }
func Conflict(message string) error     { return NewError(ErrConflict, message) }
func Forbidden(message string) error    { return NewError(ErrForbidden, message) }
func Unauthorized(message string) error { return NewError(ErrUnauthorized, message) }
