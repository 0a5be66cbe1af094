package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindInternal           Kind = "internal"
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindSelfFollow         Kind = "self_follow"
	KindDuplicateUsername  Kind = "duplicate_username"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalid            Kind = "invalid"
	KindUnauthorized       Kind = "unauthorized"
	KindRateLimited        Kind = "rate_limited"
)

// Error is a domain error carrying a kind and a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error { return New(KindNotFound, message) }
func Forbidden(message string) *Error { return New(KindForbidden, message) }
func Invalid(message string) *Error { return New(KindInvalid, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func RateLimited(message string) *Error { return New(KindRateLimited, message) }
func SelfFollow() *Error { return New(KindSelfFollow, "You cannot follow yourself.") }
func DuplicateUsername() *Error { return New(KindDuplicateUsername, "A user with that username already exists.") }
func InvalidCredentials() *Error { return New(KindInvalidCredentials, "Invalid credentials") }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf maps an error kind to its HTTP status code.
func StatusOf(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindSelfFollow, KindDuplicateUsername, KindInvalidCredentials, KindInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
