package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")
	ErrorRateLimited  = errors.New("rate limited")
	ErrorConflict     = errors.New("conflict")

	// ErrorStoreUnavailable marks a failing cache, counter or document store call.
	ErrorStoreUnavailable = errors.New("store unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// DetailError pairs a sentinel kind with the message shown to API callers.
// errors.Is(err, common.ErrorForbidden) keeps working through it.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Kind }

func NotFound(detail string) error {
	return &DetailError{Kind: ErrorNotFound, Detail: detail}
}

func Forbidden(detail string) error {
	return &DetailError{Kind: ErrorForbidden, Detail: detail}
}

func Invalid(detail string) error {
	return &DetailError{Kind: ErrorValidation, Detail: detail}
}

func Conflict(detail string) error {
	return &DetailError{Kind: ErrorConflict, Detail: detail}
}

// RateLimitError is returned when a caller exhausted its request window.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", e.RetrySeconds())
}

func (e *RateLimitError) Unwrap() error { return ErrorRateLimited }

// RetrySeconds rounds the remaining window up to whole seconds.
func (e *RateLimitError) RetrySeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	s := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		s++
	}
	return s
}

// Unavailable wraps a store failure so callers can match ErrorStoreUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrorStoreUnavailable, err)
}
