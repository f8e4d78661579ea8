// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package failure defines the error taxonomy shared by the news, model, and
// messaging clients. Every failure surfaced by those clients is an *Error
// carrying a Kind and a human-readable detail, so callers can branch on the
// kind without knowing which service produced it.
package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independently of the service that produced it.
type Kind int

const (
	// Internal is the zero value so unclassified errors default to it.
	Internal Kind = iota
	Unauthorized
	RateLimited
	BadRequest
	ServiceUnavailable
	GatewayTimeout
)

var kindNames = map[Kind]string{
	Internal:           "internal",
	Unauthorized:       "unauthorized",
	RateLimited:        "rate_limited",
	BadRequest:         "bad_request",
	ServiceUnavailable: "service_unavailable",
	GatewayTimeout:     "gateway_timeout",
}

var kindStatus = map[Kind]int{
	Internal:           http.StatusInternalServerError,
	Unauthorized:       http.StatusUnauthorized,
	RateLimited:        http.StatusTooManyRequests,
	BadRequest:         http.StatusBadRequest,
	ServiceUnavailable: http.StatusServiceUnavailable,
	GatewayTimeout:     http.StatusGatewayTimeout,
}

// String returns the snake_case token used as error_type in API responses.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HTTPStatus returns the HTTP status code that corresponds to the kind.
func (k Kind) HTTPStatus() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a failure of kind with a formatted detail.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure of kind that wraps err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal
// when err carries no classification.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// DetailOf returns the detail of the first *Error in err's chain, or
// err.Error() when err carries no classification.
func DetailOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
