// Copyright (c) 2026 BVK Chaitanya

package tradehub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"runtime/debug"
	"time"

	"github.com/bvk/flipbot/ctxutil"
	"github.com/bvk/flipbot/marketplace"

	"github.com/gorilla/websocket"
)

// goWatchEvents keeps a websocket subscription to the marketplace event
// stream alive. Sale confirmations and listing removals are published on the
// events topic; the auto-seller and the server subscribe there.
func (c *Client) goWatchEvents(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("CAUGHT PANIC", "panic", r)
			slog.Error(string(debug.Stack()))
			panic(r)
		}
	}()

	for i := 0; ctx.Err() == nil; i = min(i+1, 5) {
		if err := c.watchEvents(ctx); err != nil {
			if !errors.Is(err, os.ErrClosed) && !errors.Is(err, context.Cause(ctx)) {
				slog.Warn("could not get messages over websocket (may retry)", "err", err)
			}
			ctxutil.Sleep(ctx, c.opts.WebsocketRetryInterval<<i)
		}
	}
}

func (c *Client) watchEvents(ctx context.Context) (status error) {
	u := &url.URL{
		Scheme: "wss",
		Host:   c.opts.WebsocketHostname,
		Path:   eventsPath,
	}
	token, err := c.signJWT(http.MethodGet, u.Host+u.Path)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	dialer := &websocket.Dialer{
		HandshakeTimeout: c.opts.HttpClientTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return err
	}
	defer conn.Close()

	stopf := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stopf()

	slog.Info("subscribed to the marketplace event stream", "host", u.Host)

	for ctx.Err() == nil {
		var event eventType
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}
		when := event.Time
		if when.IsZero() {
			when = time.Now()
		}
		c.events.Send(marketplace.Event{
			Kind:      marketplace.EventKind(event.Kind),
			ListingID: marketplace.ListingID(event.ListingID),
			ItemID:    marketplace.ItemID(event.ItemID),
			Price:     event.Price,
			Time:      when,
		})
	}
	return context.Cause(ctx)
}
