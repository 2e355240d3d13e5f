package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// ErrorKind classifies a fetch failure for the orchestrator's retry
// policy.
type ErrorKind string

const (
	// Transient failures (timeout, rate limit, 5xx) may be retried.
	Transient ErrorKind = "transient"
	// Permanent failures (bad identifier, unsupported endpoint) must not.
	Permanent ErrorKind = "permanent"
)

// FetchError is the typed failure returned by every adapter call.
type FetchError struct {
	Kind     ErrorKind
	Source   domain.Source
	Endpoint string
	Message  string
	Err      error // underlying cause, may be nil
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s [%s]: %s: %v", e.Source, e.Endpoint, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s [%s]: %s", e.Source, e.Endpoint, e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewTransient builds a retryable FetchError.
func NewTransient(source domain.Source, endpoint, message string, err error) *FetchError {
	return &FetchError{Kind: Transient, Source: source, Endpoint: endpoint, Message: message, Err: err}
}

// NewPermanent builds a non-retryable FetchError.
func NewPermanent(source domain.Source, endpoint, message string, err error) *FetchError {
	return &FetchError{Kind: Permanent, Source: source, Endpoint: endpoint, Message: message, Err: err}
}

// IsTransient reports whether err is a FetchError that may be retried.
// Untyped errors are treated as permanent: retrying what we cannot
// classify just burns the retry budget.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == Transient
	}
	return false
}

// classifyTransport maps a transport-level error onto the taxonomy.
// Context timeouts and net timeouts are transient; everything else on
// the wire is too (DNS flaps, resets), since the endpoint itself was
// valid.
func classifyTransport(source domain.Source, endpoint string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTransient(source, endpoint, "request timed out", err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return NewTransient(source, endpoint, "request timed out", err)
	}
	return NewTransient(source, endpoint, "network failure", err)
}

// classifyStatus maps an HTTP status code onto the taxonomy.
func classifyStatus(source domain.Source, endpoint string, status int) *FetchError {
	switch {
	case status == 429:
		return NewTransient(source, endpoint, "rate limited", nil)
	case status >= 500:
		return NewTransient(source, endpoint, fmt.Sprintf("server error %d", status), nil)
	default:
		return NewPermanent(source, endpoint, fmt.Sprintf("unexpected status %d", status), nil)
	}
}
