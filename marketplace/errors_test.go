// Copyright (c) 2026 BVK Chaitanya

package marketplace

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorClasses(t *testing.T) {
	cases := []struct {
		err       *Error
		class     error
		retriable bool
	}{
		{TransientError(errors.New("read: connection reset")), ErrTransient, true},
		{RateLimitedError(5 * time.Second), ErrRateLimited, true},
		{ServerError(503), ErrServer, true},
		{AuthError(401), ErrAuth, false},
		{NoFundError(1500, 1000), ErrNoFund, false},
		{InvalidError("empty item id"), ErrInvalid, false},
		{CircuitOpenError(time.Minute), ErrCircuitOpen, false},
	}
	for i, c := range cases {
		if !errors.Is(c.err, c.class) {
			t.Fatalf("case %d: %v must match its class sentinel", i, c.err)
		}
		if c.err.Retriable() != c.retriable {
			t.Fatalf("case %d: Retriable() = %v, want %v", i, c.err.Retriable(), c.retriable)
		}
		for _, other := range cases {
			if other.class != c.class && errors.Is(c.err, other.class) {
				t.Fatalf("case %d: %v must not match %v", i, c.err, other.class)
			}
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := TransientError(cause)
	wrapped := fmt.Errorf("could not fetch listings: %w", err)
	if !errors.Is(wrapped, ErrTransient) {
		t.Fatalf("wrapped error must still match ErrTransient")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("wrapped error must expose the original cause")
	}
}

func TestErrorText(t *testing.T) {
	err := RateLimitedError(2 * time.Second)
	if !strings.HasPrefix(err.Error(), "E-RATE-LIMIT") {
		t.Fatalf("error text must start with the stable code: %q", err.Error())
	}
	if err.RetryAfter != 2*time.Second {
		t.Fatalf("retry-after = %v", err.RetryAfter)
	}
}
