// Copyright (c) 2026 BVK Chaitanya

package marketplace

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors classifying every failure the concrete client can surface.
// Callers match on these with errors.Is; the *Error wrapper below carries the
// details.
var (
	// ErrTransient marks timeouts and connection resets. The client
	// retries these internally and surfaces them only after exhaustion.
	ErrTransient = errors.New("transient network failure")

	// ErrRateLimited marks 429 responses. Retried internally honoring the
	// server's Retry-After delay.
	ErrRateLimited = errors.New("rate limited by the marketplace")

	// ErrServer marks 5xx responses. Retried internally; counts toward
	// the circuit breaker.
	ErrServer = errors.New("marketplace server failure")

	// ErrAuth marks 401/403 responses. Never retried.
	ErrAuth = errors.New("marketplace authentication failure")

	// ErrNoFund marks a buy rejected for insufficient balance. Never
	// retried.
	ErrNoFund = errors.New("insufficient account balance")

	// ErrInvalid marks requests rejected before hitting the network or
	// refused by the marketplace as malformed.
	ErrInvalid = errors.New("invalid request")

	// ErrCircuitOpen marks fast failures while a circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// Error is the typed failure surfaced by the concrete client. Every error
// wraps exactly one of the sentinel classes above, carries a stable
// user-visible code and never exposes raw transport details.
type Error struct {
	class error

	// Code is a stable, machine-readable identifier of the error class.
	Code string

	// Summary is a short user-visible description.
	Summary string

	// Status is the HTTP status code when the failure came from a
	// response, zero otherwise.
	Status int

	// RetryAfter holds the server-requested delay for rate-limit errors.
	RetryAfter time.Duration

	// Cooldown holds the remaining circuit breaker cooldown for
	// circuit-open errors.
	Cooldown time.Duration

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Summary, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Summary)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	return target == e.class
}

// Retriable reports whether the failure class is safe to retry.
func (e *Error) Retriable() bool {
	switch e.class {
	case ErrTransient, ErrRateLimited, ErrServer:
		return true
	}
	return false
}

func newError(class error, code, summary string) *Error {
	return &Error{class: class, Code: code, Summary: summary}
}

// TransientError wraps a timeout or connection failure.
func TransientError(cause error) *Error {
	e := newError(ErrTransient, "E-TRANSIENT", "temporary network failure")
	e.cause = cause
	return e
}

// RateLimitedError wraps a 429 with the server-requested delay.
func RateLimitedError(retryAfter time.Duration) *Error {
	e := newError(ErrRateLimited, "E-RATE-LIMIT", "too many requests")
	e.Status = 429
	e.RetryAfter = retryAfter
	return e
}

// ServerError wraps a 5xx response.
func ServerError(status int) *Error {
	e := newError(ErrServer, "E-SERVER", "marketplace backend failure")
	e.Status = status
	return e
}

// AuthError wraps a 401 or 403 response.
func AuthError(status int) *Error {
	e := newError(ErrAuth, "E-AUTH", "authentication rejected")
	e.Status = status
	return e
}

// NoFundError reports a buy exceeding the available balance.
func NoFundError(price, balance int64) *Error {
	e := newError(ErrNoFund, "E-NO-FUND", fmt.Sprintf("price %d exceeds balance %d", price, balance))
	return e
}

// InvalidError reports a request rejected before the network.
func InvalidError(summary string) *Error {
	return newError(ErrInvalid, "E-INVALID", summary)
}

// CircuitOpenError reports a fast failure with the remaining cooldown.
func CircuitOpenError(cooldown time.Duration) *Error {
	e := newError(ErrCircuitOpen, "E-CIRCUIT-OPEN", fmt.Sprintf("retry after %s", cooldown.Truncate(time.Second)))
	e.Cooldown = cooldown
	return e
}
