// Copyright (c) 2026 BVK Chaitanya

package tradehub

import (
	"sync"
	"time"

	"github.com/bvk/flipbot/marketplace"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// breaker isolates one endpoint class from a failing backend. It opens after
// a configured number of consecutive failures, fails fast for a cooldown
// period and then admits a single probe. State transitions happen under one
// lock so two concurrent callers can never both claim the half-open probe.
type breaker struct {
	threshold   int
	cooldown    time.Duration
	maxCooldown time.Duration

	clock func() time.Time

	mu sync.Mutex

	state    breakerState
	failures int

	// current is the active cooldown. It doubles every time the breaker
	// reopens and resets when a probe succeeds.
	current  time.Duration
	openedAt time.Time

	// probing is true while the single half-open probe is in flight.
	probing bool
}

func newBreaker(threshold int, cooldown, maxCooldown time.Duration, clock func() time.Time) *breaker {
	if clock == nil {
		clock = time.Now
	}
	return &breaker{
		threshold:   threshold,
		cooldown:    cooldown,
		maxCooldown: maxCooldown,
		current:     cooldown,
		clock:       clock,
	}
}

// Allow reports whether a call may proceed. While open it returns a
// CircuitOpenError carrying the remaining cooldown; when the cooldown has
// elapsed it admits exactly one probe and keeps failing fast for everyone
// else until the probe reports back.
func (b *breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return nil

	case breakerOpen:
		remaining := b.openedAt.Add(b.current).Sub(b.clock())
		if remaining > 0 {
			return marketplace.CircuitOpenError(remaining)
		}
		b.state = breakerHalfOpen
		b.probing = true
		return nil

	default: // breakerHalfOpen
		if b.probing {
			return marketplace.CircuitOpenError(0)
		}
		b.probing = true
		return nil
	}
}

// Success records a successful call.
func (b *breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == breakerHalfOpen {
		b.state = breakerClosed
		b.probing = false
		b.current = b.cooldown
	}
}

// Failure records a failed call and opens the circuit at the threshold. A
// failed half-open probe reopens with a doubled cooldown, capped at the
// configured maximum.
func (b *breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerHalfOpen:
		b.probing = false
		b.current = min(b.current*2, b.maxCooldown)
		b.state = breakerOpen
		b.openedAt = b.clock()

	case breakerClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.state = breakerOpen
			b.openedAt = b.clock()
			b.failures = 0
		}
	}
}
