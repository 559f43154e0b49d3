// Copyright (c) 2026 BVK Chaitanya

// Package tradehub implements the marketplace.Marketplace contract over the
// TradeHub REST and websocket APIs. All requests are signed, admitted under a
// per-endpoint-class token budget and guarded by a per-class circuit breaker.
// Transient failures are retried with exponential backoff before they surface
// to the caller.
package tradehub

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	mrand "math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bvk/flipbot/ctxutil"
	"github.com/bvk/flipbot/idgen"
	"github.com/bvk/flipbot/marketplace"
	"github.com/google/uuid"
	"github.com/visvasity/topic"
	"golang.org/x/time/rate"

	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// EndpointClass buckets API paths for rate limiting and circuit breaking.
type EndpointClass string

const (
	MarketData EndpointClass = "market-data"
	Trading    EndpointClass = "trading"
	Account    EndpointClass = "account"
)

type Client struct {
	cg ctxutil.CloseGroup

	opts Options

	kid string

	priKey *ecdsa.PrivateKey
	signer jose.Signer

	client *http.Client

	limiters map[EndpointClass]*rate.Limiter
	breakers map[EndpointClass]*breaker

	// Client order ids are attached to buy/sell requests so that a
	// retried request is idempotent at the marketplace.
	idgenMu sync.Mutex
	idgen   *idgen.Generator

	events *topic.Topic[marketplace.Event]
}

type nonceSource struct{}

func (n nonceSource) Nonce() (string, error) {
	r, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// New creates a client for the TradeHub marketplace. The key id and the EC
// private key in PEM form come from the user's secrets file.
func New(ctx context.Context, kid, pemText string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		slog.Error("could not parse the PEM private key")
		return nil, os.ErrInvalid
	}
	priKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		slog.Error("could not parse the EC private key", "err", err)
		return nil, err
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: priKey},
		(&jose.SignerOptions{NonceSource: nonceSource{}}).WithType("JWT").WithHeader("kid", kid),
	)
	if err != nil {
		slog.Error("could not create go-jose.v2 pkg signer", "err", err)
		return nil, err
	}

	c := &Client{
		opts:   *opts,
		kid:    kid,
		priKey: priKey,
		signer: signer,
		client: &http.Client{
			Timeout: opts.HttpClientTimeout,
		},
		limiters: make(map[EndpointClass]*rate.Limiter),
		breakers: make(map[EndpointClass]*breaker),
		idgen:    idgen.New(uuid.NewString(), 0),
		events:   topic.New[marketplace.Event](),
	}
	for class, budget := range opts.RateBudgets {
		c.limiters[class] = rate.NewLimiter(rate.Every(time.Minute/time.Duration(budget)), budget)
		c.breakers[class] = newBreaker(opts.BreakerThreshold, opts.BreakerCooldown, opts.BreakerMaxCooldown, nil)
	}

	if opts.subscribeEvents {
		c.cg.Go(c.goWatchEvents)
	}
	return c, nil
}

// Close shuts down the client and its websocket stream.
func (c *Client) Close() error {
	c.cg.Close()
	c.events.Close()
	return nil
}

// Events subscribes to the marketplace push event stream. Sale confirmations
// for our listings arrive here.
func (c *Client) Events() (*topic.Receiver[marketplace.Event], error) {
	return topic.Subscribe(c.events, 16, true)
}

func (c *Client) nextClientOrderID() string {
	c.idgenMu.Lock()
	defer c.idgenMu.Unlock()
	return c.idgen.NextID().String()
}

type apiClaims struct {
	*jwt.Claims
	URI string `json:"uri"`
}

func (c *Client) signJWT(method, hostpath string) (string, error) {
	cl := &apiClaims{
		Claims: &jwt.Claims{
			Subject:   c.kid,
			Issuer:    "tradehub",
			NotBefore: jwt.NewNumericDate(time.Now()),
			Expiry:    jwt.NewNumericDate(time.Now().Add(2 * time.Minute)),
		},
		URI: fmt.Sprintf("%s %s", method, hostpath),
	}
	return jwt.Signed(c.signer).Claims(cl).CompactSerialize()
}

func (c *Client) restURL(apiPath string, values url.Values) *url.URL {
	u := &url.URL{
		Scheme:   "https",
		Host:     c.opts.RestHostname,
		Path:     apiPath,
		RawQuery: values.Encode(),
	}
	if c.opts.restScheme != "" {
		u.Scheme = c.opts.restScheme
	}
	return u
}

// do performs one logical API call: admit under the class token budget, sign,
// call, classify and retry. Every failure the caller sees is a typed
// *marketplace.Error; raw transport errors never escape.
func (c *Client) do(ctx context.Context, class EndpointClass, method string, u *url.URL, request, result any) error {
	br := c.breakers[class]
	lim := c.limiters[class]

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := br.Allow(); err != nil {
			return err
		}
		if err := lim.Wait(ctx); err != nil {
			return marketplace.TransientError(context.Cause(ctx))
		}

		retryAfter, err := c.roundTrip(ctx, method, u, request, result)
		if err == nil {
			br.Success()
			return nil
		}
		if errors.Is(err, marketplace.ErrServer) || errors.Is(err, marketplace.ErrTransient) {
			br.Failure()
		}

		var merr *marketplace.Error
		if !errors.As(err, &merr) || !merr.Retriable() {
			return err
		}
		lastErr = err
		if attempt >= c.opts.MaxRetries {
			return lastErr
		}

		delay := c.backoff(attempt)
		if errors.Is(err, marketplace.ErrRateLimited) && retryAfter > 0 {
			// The server knows better than our computed backoff.
			delay = retryAfter
		}
		slog.Warn("marketplace request failed (will retry)", "class", class, "path", u.Path, "attempt", attempt+1, "delay", delay, "err", err)
		ctxutil.Sleep(ctx, delay)
		if ctx.Err() != nil {
			return marketplace.TransientError(context.Cause(ctx))
		}
	}
}

// backoff computes the delay before retry number attempt+1 with ±20% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBackoff << attempt
	jitter := time.Duration(mrand.Int64N(int64(d)*2/5+1)) - d/5
	return d + jitter
}

func (c *Client) roundTrip(ctx context.Context, method string, u *url.URL, request, result any) (time.Duration, error) {
	var body io.Reader
	if request != nil {
		data, err := json.Marshal(request)
		if err != nil {
			return 0, marketplace.InvalidError(fmt.Sprintf("could not marshal request: %v", err))
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.HttpClientTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, marketplace.InvalidError(fmt.Sprintf("could not create request: %v", err))
	}
	token, err := c.signJWT(method, u.Host+u.Path)
	if err != nil {
		slog.Error("could not create signed jwt token", "path", u.Path, "err", err)
		return 0, marketplace.InvalidError("could not sign the request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if request != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.DeadlineExceeded) {
			return 0, marketplace.TransientError(cause)
		}
		// Timeouts count as backend failures for retry and breaker
		// purposes.
		return 0, marketplace.TransientError(err)
	}
	defer resp.Body.Close()

	return c.classify(resp, result)
}

func (c *Client) classify(resp *http.Response, result any) (time.Duration, error) {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if result == nil {
			io.Copy(io.Discard, resp.Body)
			return 0, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return 0, marketplace.ServerError(resp.StatusCode)
		}
		return 0, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, marketplace.AuthError(resp.StatusCode)

	case resp.StatusCode == http.StatusTooManyRequests:
		var retryAfter time.Duration
		if v := resp.Header.Get("Retry-After"); len(v) != 0 {
			if secs, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return retryAfter, marketplace.RateLimitedError(retryAfter)

	case resp.StatusCode >= 500:
		return 0, marketplace.ServerError(resp.StatusCode)

	default:
		var eresp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&eresp); err == nil {
			if eresp.Code == "insufficient-funds" {
				return 0, marketplace.NoFundError(0, 0)
			}
			if len(eresp.Message) != 0 {
				return 0, marketplace.InvalidError(eresp.Message)
			}
		}
		return 0, marketplace.InvalidError(fmt.Sprintf("request rejected with status %d", resp.StatusCode))
	}
}

func (c *Client) getJSON(ctx context.Context, class EndpointClass, apiPath string, values url.Values, result any) error {
	return c.do(ctx, class, http.MethodGet, c.restURL(apiPath, values), nil, result)
}

func (c *Client) postJSON(ctx context.Context, class EndpointClass, apiPath string, request, result any) error {
	return c.do(ctx, class, http.MethodPost, c.restURL(apiPath, nil), request, result)
}
