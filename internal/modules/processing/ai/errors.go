package ai

import (
	"errors"
	"fmt"
	"time"
)

// ErrKind classifies pipeline failures for callers.
type ErrKind string

const (
	KindValidation        ErrKind = "validation"
	KindQuotaExceeded     ErrKind = "quota_exceeded"
	KindUpstreamTransient ErrKind = "upstream_transient"
	KindUpstreamPermanent ErrKind = "upstream_permanent"
	KindUpstreamThrottled ErrKind = "upstream_throttled"
	KindInternal          ErrKind = "internal"
)

// Error is the typed failure surfaced by the pipeline. Raw upstream bodies
// are never carried in Message; callers get a stable kind plus retry-after
// guidance where it applies.
type Error struct {
	Kind       ErrKind
	Message    string
	RetryAfter time.Duration
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind ErrKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// AsError extracts a typed pipeline error, defaulting to KindInternal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return wrapError(KindInternal, "unexpected error", err)
}

// Retryable reports whether the caller may safely retry later.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindQuotaExceeded, KindUpstreamTransient, KindUpstreamThrottled:
		return true
	}
	return false
}
