package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures so the HTTP boundary can map them to status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindStorage
	KindUpstream
	KindUnavailable
)

var kindCodes = map[Kind]string{
	KindInternal:      "internal_error",
	KindValidation:    "validation_error",
	KindAuth:          "unauthorized",
	KindAuthorization: "forbidden",
	KindNotFound:      "not_found",
	KindStorage:       "storage_error",
	KindUpstream:      "upstream_error",
	KindUnavailable:   "service_unavailable",
}

var kindStatus = map[Kind]int{
	KindInternal:      http.StatusInternalServerError,
	KindValidation:    http.StatusBadRequest,
	KindAuth:          http.StatusUnauthorized,
	KindAuthorization: http.StatusForbidden,
	KindNotFound:      http.StatusNotFound,
	KindStorage:       http.StatusInternalServerError,
	KindUpstream:      http.StatusBadGateway,
	KindUnavailable:   http.StatusServiceUnavailable,
}

// Error is the application error carried from stores and services up to the HTTP layer.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return kindCodes[e.Kind]
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the machine readable code rendered in JSON error bodies.
func (e *Error) Code() string { return kindCodes[e.Kind] }

// Status returns the HTTP status associated with the error kind.
func (e *Error) Status() int { return kindStatus[e.Kind] }

func newf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, nil, format, args...)
}

func Auth(format string, args ...any) *Error {
	return newf(KindAuth, nil, format, args...)
}

func Authorization(format string, args ...any) *Error {
	return newf(KindAuthorization, nil, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, nil, format, args...)
}

// Storage wraps an underlying persistence failure.
func Storage(err error, format string, args ...any) *Error {
	return newf(KindStorage, err, format, args...)
}

// Upstream wraps a failure talking to an external service.
func Upstream(err error, format string, args ...any) *Error {
	return newf(KindUpstream, err, format, args...)
}

// Unavailable marks an external dependency as not reachable at all.
func Unavailable(err error, format string, args ...any) *Error {
	return newf(KindUnavailable, err, format, args...)
}

// KindOf reports the kind of err, or KindInternal when err is not an *Error.
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

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	return kindStatus[KindOf(err)]
}

// Code maps err to its JSON error code.
func Code(err error) string {
	return kindCodes[KindOf(err)]
}

// PublicMessage returns the message safe to show to API clients. Internal and
// storage failures are not echoed back verbatim.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "internal server error"
	}
	switch appErr.Kind {
	case KindInternal:
		return "internal server error"
	case KindStorage:
		if appErr.Message != "" {
			return appErr.Message
		}
		return "storage failure"
	}
	if appErr.Message != "" {
		return appErr.Message
	}
	return appErr.Error()
}
