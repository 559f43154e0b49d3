// Copyright (c) 2026 BVK Chaitanya

package tradehub

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bvk/flipbot/marketplace"
)

func testKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

func newTestClient(t *testing.T, handler http.Handler, opts *Options) *Client {
	t.Helper()
	s := httptest.NewServer(handler)
	t.Cleanup(s.Close)

	if opts == nil {
		opts = new(Options)
	}
	opts.RestHostname = s.Listener.Addr().String()
	opts.restScheme = "http"
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = time.Millisecond
	}

	c, err := New(context.Background(), "test-key", testKeyPEM(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Fatal(err)
		}
	})
	return c
}

func TestRetryAbsorbsTransientServerErrors(t *testing.T) {
	var hits atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(&balanceResponse{Balance: 12345})
	})
	c := newTestClient(t, handler, nil)

	balance, err := c.Balance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if balance != 12345 {
		t.Fatalf("balance = %d, want 12345", balance)
	}
	if n := hits.Load(); n != 3 {
		t.Fatalf("server saw %d requests, want 3", n)
	}
}

func TestRetriesExhausted(t *testing.T) {
	var hits atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c := newTestClient(t, handler, &Options{MaxRetries: 2, BreakerThreshold: 100})

	_, err := c.Balance(context.Background())
	if !errors.Is(err, marketplace.ErrServer) {
		t.Fatalf("want ErrServer, got %v", err)
	}
	if n := hits.Load(); n != 3 {
		t.Fatalf("server saw %d requests, want 1 + 2 retries", n)
	}
}

func TestBreakerOpensAcrossCallBoundaries(t *testing.T) {
	var hits atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, handler, &Options{MaxRetries: 3})

	ctx := context.Background()

	// First logical call makes 1 + 3 attempts, all failing.
	if _, err := c.Balance(ctx); !errors.Is(err, marketplace.ErrServer) {
		t.Fatalf("want ErrServer, got %v", err)
	}
	if n := hits.Load(); n != 4 {
		t.Fatalf("server saw %d requests, want 4", n)
	}

	// The second call's first attempt is the fifth consecutive failure;
	// the breaker opens and the retry fails fast without the network.
	if _, err := c.Balance(ctx); !errors.Is(err, marketplace.ErrCircuitOpen) {
		t.Fatalf("want ErrCircuitOpen, got %v", err)
	}
	if n := hits.Load(); n != 5 {
		t.Fatalf("breaker must open after the 5th failure, server saw %d requests", n)
	}

	// Further calls fail fast with the remaining cooldown.
	_, err := c.Balance(ctx)
	var merr *marketplace.Error
	if !errors.As(err, &merr) || !errors.Is(err, marketplace.ErrCircuitOpen) {
		t.Fatalf("want typed circuit-open error, got %v", err)
	}
	if merr.Cooldown <= 0 {
		t.Fatalf("circuit-open error must carry the remaining cooldown")
	}
	if n := hits.Load(); n != 5 {
		t.Fatalf("open breaker must not reach the network, server saw %d requests", n)
	}
}

func TestRateLimitedHonorsRetryAfter(t *testing.T) {
	var hits atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(&balanceResponse{Balance: 1})
	})
	c := newTestClient(t, handler, nil)

	start := time.Now()
	if _, err := c.Balance(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Fatalf("client retried after %s, must honor the 1s Retry-After", elapsed)
	}
	if n := hits.Load(); n != 2 {
		t.Fatalf("server saw %d requests, want 2", n)
	}
}

func TestAuthFailureIsNotRetried(t *testing.T) {
	var hits atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, handler, nil)

	_, err := c.Balance(context.Background())
	if !errors.Is(err, marketplace.ErrAuth) {
		t.Fatalf("want ErrAuth, got %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("auth failures must not retry, server saw %d requests", n)
	}
}

func TestInsufficientBalanceIsNotRetried(t *testing.T) {
	var hits atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(&errorResponse{Code: "insufficient-funds", Message: "balance too low"})
	})
	c := newTestClient(t, handler, nil)

	_, err := c.Buy(context.Background(), "L1", 1000)
	if !errors.Is(err, marketplace.ErrNoFund) {
		t.Fatalf("want ErrNoFund, got %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("business errors must not retry, server saw %d requests", n)
	}
}

func TestValidationRejectsBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	c := newTestClient(t, handler, nil)

	ctx := context.Background()
	if _, err := c.Listings(ctx, "", nil); !errors.Is(err, marketplace.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
	if _, err := c.Buy(ctx, "", 100); !errors.Is(err, marketplace.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
	if _, err := c.Sell(ctx, "item", 0); !errors.Is(err, marketplace.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("validation errors must not reach the network, server saw %d requests", n)
	}
}

func TestListings(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != listingsPath {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("game"); got != "rust" {
			t.Errorf("game = %q, want rust", got)
		}
		if auth := r.Header.Get("Authorization"); len(auth) == 0 {
			t.Errorf("request must carry a signed authorization token")
		}
		resp := &listingsResponse{
			Game:    "rust",
			TakenAt: time.Now(),
			Listings: []*listingType{
				{ListingID: "L1", ItemID: "ak-rifle", Title: "AK Rifle", Game: "rust", Price: 500},
				{ListingID: "L2", ItemID: "ak-rifle", Title: "AK Rifle", Game: "rust", Price: 650},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	c := newTestClient(t, handler, nil)

	snap, err := c.Listings(context.Background(), "rust", &marketplace.ListingFilters{MaxPrice: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(snap.Listings))
	}
	if snap.Listings[0].ItemID != "ak-rifle" || snap.Listings[0].Price != 500 {
		t.Fatalf("unexpected first listing %+v", snap.Listings[0])
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	c := &Client{opts: Options{RetryBackoff: 1000 * time.Nanosecond}}

	for _, attempt := range []int{0, 1, 3} {
		d := c.opts.RetryBackoff << attempt
		lo, hi := d, d
		for i := 0; i < 10000; i++ {
			delay := c.backoff(attempt)
			if delay < d-d/5 || delay > d+d/5 {
				t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, delay, d-d/5, d+d/5)
			}
			if delay < lo {
				lo = delay
			}
			if delay > hi {
				hi = delay
			}
		}
		// The jitter must actually use the full 20% band.
		if lo >= d-d/10 || hi <= d+d/10 {
			t.Fatalf("attempt %d: observed range [%v, %v] is narrower than 20%% of %v", attempt, lo, hi, d)
		}
	}
}
