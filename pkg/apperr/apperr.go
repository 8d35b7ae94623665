package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure the request boundary knows how to map.
type Code int

const (
	CodeUnauthenticated Code = iota + 1
	CodeSessionExpired
	CodeSelfFollow
	CodeNotFound
	CodeConflict
	CodeInvalidPagination
	CodeUpstreamUnavailable
)

// Error is the taxonomy carried from services up to the HTTP boundary.
// Store/cache errors are wrapped, everything else passes through unmodified.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match two taxonomy errors by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

var (
	ErrUnauthenticated   = New(CodeUnauthenticated, "login required")
	ErrSessionExpired    = New(CodeSessionExpired, "session expired, please login again")
	ErrSelfFollow        = New(CodeSelfFollow, "cannot follow yourself")
	ErrNotFound          = New(CodeNotFound, "resource not found")
	ErrConflict          = New(CodeConflict, "email or username already exists")
	ErrInvalidPagination = New(CodeInvalidPagination, "invalid page or limit")
)

// Upstream wraps a cache/store transport failure. Not retried internally.
func Upstream(cause error) *Error {
	return Wrap(CodeUpstreamUnavailable, "upstream unavailable", cause)
}

// HTTPStatus maps a taxonomy code to the status the boundary responds with.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeUnauthenticated, CodeSessionExpired:
		return http.StatusUnauthorized
	case CodeSelfFollow, CodeInvalidPagination:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
