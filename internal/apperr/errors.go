package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the caller. Handlers map it to an HTTP status.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthorization
	KindCredential
	KindLoad
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindCredential:
		return "credential"
	case KindLoad:
		return "load"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Only the kind is compared.
var (
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrCredential    = &Error{Kind: KindCredential}
	ErrLoad          = &Error{Kind: KindLoad}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConflict      = &Error{Kind: KindConflict}
)

// Error is the error type returned across service boundaries. Message is safe
// to show to an administrator; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Kind.String() + ": " + e.Err.Error()
	case e.Message != "":
		return e.Kind.String() + ": " + e.Message
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Authorization(message string, err error) *Error {
	return &Error{Kind: KindAuthorization, Message: message, Err: err}
}

func Credential(message string, err error) *Error {
	return &Error{Kind: KindCredential, Message: message, Err: err}
}

func Load(message string, err error) *Error {
	return &Error{Kind: KindLoad, Message: message, Err: err}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Message returns the user-facing message for err, or a generic one.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Error interno. Por favor, intenta de nuevo."
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthorization:
		return http.StatusForbidden
	case KindCredential:
		return http.StatusUnauthorized
	case KindLoad:
		return http.StatusServiceUnavailable
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
