// Copyright (c) 2026 BVK Chaitanya

package tradehub

import (
	"fmt"
	"time"
)

type Options struct {
	// RestHostname is the marketplace REST API host.
	RestHostname string

	// WebsocketHostname is the marketplace event stream host.
	WebsocketHostname string

	// HttpClientTimeout bounds every network call.
	HttpClientTimeout time.Duration

	// MaxRetries bounds the number of retries after the first attempt for
	// retriable failures.
	MaxRetries int

	// RetryBackoff is the initial retry delay. Doubles on every retry
	// with ±20% jitter.
	RetryBackoff time.Duration

	// RateBudgets holds the per-endpoint-class token budgets as requests
	// per minute.
	RateBudgets map[EndpointClass]int

	// BreakerThreshold is the consecutive-failure count that opens an
	// endpoint class circuit.
	BreakerThreshold int

	// BreakerCooldown is the initial open-state cooldown. Doubles on
	// repeated failures up to BreakerMaxCooldown.
	BreakerCooldown    time.Duration
	BreakerMaxCooldown time.Duration

	// WebsocketRetryInterval is the initial websocket reconnect delay.
	WebsocketRetryInterval time.Duration

	// subscribeEvents disables the websocket event stream when false.
	// Tests against httptest servers keep it off.
	subscribeEvents bool

	// restScheme overrides the https scheme, for tests against local
	// httptest servers.
	restScheme string
}

func (v *Options) setDefaults() {
	if len(v.RestHostname) == 0 {
		v.RestHostname = "api.tradehub.example.com"
		v.subscribeEvents = true
	}
	if len(v.WebsocketHostname) == 0 {
		v.WebsocketHostname = "ws.tradehub.example.com"
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 10 * time.Second
	}
	if v.MaxRetries == 0 {
		v.MaxRetries = 3
	}
	if v.RetryBackoff == 0 {
		v.RetryBackoff = 500 * time.Millisecond
	}
	if v.RateBudgets == nil {
		v.RateBudgets = map[EndpointClass]int{
			MarketData: 100,
			Trading:    30,
			Account:    30,
		}
	}
	if v.BreakerThreshold == 0 {
		v.BreakerThreshold = 5
	}
	if v.BreakerCooldown == 0 {
		v.BreakerCooldown = time.Minute
	}
	if v.BreakerMaxCooldown == 0 {
		v.BreakerMaxCooldown = 16 * time.Minute
	}
	if v.WebsocketRetryInterval == 0 {
		v.WebsocketRetryInterval = time.Second
	}
}

func (v *Options) Check() error {
	if v.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if v.BreakerThreshold < 1 {
		return fmt.Errorf("breaker threshold must be at least one")
	}
	for class, budget := range v.RateBudgets {
		if budget <= 0 {
			return fmt.Errorf("rate budget for class %q must be positive", class)
		}
	}
	return nil
}
