package trackzero

import (
	"errors"
	"fmt"

	"github.com/aviadshiber/tz/internal/client"
)

// Error kinds. Match them with errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrValidation     = errors.New("validation error")
	ErrNotInitialized = errors.New("client not initialized")
	ErrTypeMismatch   = errors.New("type mismatch")
)

// Error is a local failure detected before any request is sent.
type Error struct {
	Kind    error
	Op      string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("trackzero: %s: %s: %s", e.Op, e.Kind, e.Message)
}

// Is reports whether target is e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func newError(kind error, op, format string, a ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, a...)}
}

// IsValidationError reports whether err is a local validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotInitialized reports whether err was caused by a missing client.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}

// TransportError and StatusError are the two remote failure shapes returned
// by Response.Err.
type (
	TransportError = client.TransportError
	StatusError    = client.StatusError
)
