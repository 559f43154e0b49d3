// Copyright (c) 2026 BVK Chaitanya

// Package server wires the marketplace client, the cache, the scanner, the
// seller and the control surfaces into one daemon.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/cache"
	"github.com/bvk/flipbot/ctxutil"
	"github.com/bvk/flipbot/gobs"
	"github.com/bvk/flipbot/history"
	"github.com/bvk/flipbot/job"
	"github.com/bvk/flipbot/kvutil"
	"github.com/bvk/flipbot/marketplace"
	"github.com/bvk/flipbot/metrics"
	"github.com/bvk/flipbot/scanner"
	"github.com/bvk/flipbot/seller"
	"github.com/bvk/flipbot/telegram"
	"github.com/bvk/flipbot/tradehub"
	"github.com/bvkgo/kv"
	"github.com/visvasity/topic"
)

const (
	// ServerStateKey holds the persisted daemon configuration.
	ServerStateKey = "/server/state"

	// ScannerJobUID and SellerJobUID are the fixed uids of the two
	// background jobs.
	ScannerJobUID = "scanner"
	SellerJobUID  = "seller"

	scannerTypename = "Scanner"
	sellerTypename  = "Seller"
)

type Server struct {
	closeCtx   context.Context
	closeCause context.CancelCauseFunc

	cg ctxutil.CloseGroup

	opts Options

	db kv.Database

	secrets *Secrets

	product marketplace.Marketplace

	mcache *cache.Cache

	scanner *scanner.Scanner

	seller *seller.Seller

	history *history.Datastore

	runner *job.Runner

	telegramClient *telegram.Client

	startedAt time.Time

	mu sync.Mutex

	state *gobs.ServerState

	balance int64

	lastScanAt time.Time

	alertFreezeDeadlineMap map[string]time.Time
}

func New(ctx context.Context, secrets *Secrets, db kv.Database, opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	product := opts.product
	if product == nil {
		if secrets == nil || secrets.TradeHub == nil {
			return nil, fmt.Errorf("tradehub credentials are required")
		}
		if err := secrets.Check(); err != nil {
			return nil, err
		}
		c, err := tradehub.New(ctx, secrets.TradeHub.KID, secrets.TradeHub.PEM, nil)
		if err != nil {
			return nil, fmt.Errorf("could not create tradehub client: %w", err)
		}
		product = c
	}
	defer func() {
		if status != nil && opts.product == nil {
			product.Close()
		}
	}()

	mcache, err := cache.New(nil)
	if err != nil {
		return nil, err
	}

	hist := history.NewDatastore(db)

	scan, err := scanner.New(product, mcache, hist, nil)
	if err != nil {
		return nil, err
	}

	sell, err := seller.New(product, seller.NewRepository(db), nil)
	if err != nil {
		return nil, err
	}

	state, err := kvutil.GetDB[gobs.ServerState](ctx, db, ServerStateKey)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load server state: %w", err)
		}
		state = new(gobs.ServerState)
	}

	closeCtx, closeCause := context.WithCancelCause(context.Background())
	s := &Server{
		closeCtx:   closeCtx,
		closeCause: closeCause,
		opts:       *opts,
		db:         db,
		secrets:    secrets,
		product:    product,
		mcache:     mcache,
		scanner:    scan,
		seller:     sell,
		history:    hist,
		runner:     job.NewRunner(),
		startedAt:  time.Now(),
		state:      state,

		alertFreezeDeadlineMap: make(map[string]time.Time),
	}

	if secrets != nil && secrets.Telegram != nil {
		tc, err := telegram.New(ctx, db, secrets.Telegram)
		if err != nil {
			return nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		s.telegramClient = tc
	}
	return s, nil
}

func (s *Server) Close() error {
	s.closeCause(os.ErrClosed)
	s.cg.Close()
	if s.telegramClient != nil {
		s.telegramClient.Close()
	}
	s.seller.Close()
	if s.opts.product == nil {
		s.product.Close()
	}
	return nil
}

// Start resumes persisted state and kicks off the background loops. The
// scanner and seller loops run as pausable jobs; event, balance and
// notification watchers run for the life of the server.
func (s *Server) Start(ctx context.Context) error {
	if !s.opts.NoResume {
		if err := s.seller.Resume(ctx); err != nil {
			return fmt.Errorf("could not resume scheduled sales: %w", err)
		}
		if err := s.resumeJobs(ctx); err != nil {
			return err
		}
	}

	s.cg.Go(s.goWatchEvents)
	s.cg.Go(s.goWatchBalance)
	s.cg.Go(s.goWatchSaleChanges)

	if err := s.registerTelegramCommands(ctx); err != nil {
		return err
	}
	return nil
}

// Stop pauses all running jobs so that they resume on the next start.
func (s *Server) Stop(ctx context.Context) error {
	return kv.WithReadWriter(ctx, s.db, func(ctx context.Context, rw kv.ReadWriter) error {
		return s.runner.StopAll(ctx, rw)
	})
}

func (s *Server) makeJobFunc(typename string) (job.Func, error) {
	switch typename {
	case scannerTypename:
		return s.runScanLoop, nil
	case sellerTypename:
		return s.seller.Run, nil
	}
	return nil, fmt.Errorf("unsupported job type %q", typename)
}

// resumeJobs restarts the scanner and seller jobs unless they were canceled
// explicitly. Missing job entries are created on first start.
func (s *Server) resumeJobs(ctx context.Context) error {
	for _, uid := range []string{ScannerJobUID, SellerJobUID} {
		typename := scannerTypename
		if uid == SellerJobUID {
			typename = sellerTypename
		}

		resume := func(ctx context.Context, rw kv.ReadWriter) error {
			jd, err := s.runner.Get(ctx, rw, uid)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				if err := s.runner.Add(ctx, rw, uid, typename); err != nil {
					return err
				}
				jd, err = s.runner.Get(ctx, rw, uid)
				if err != nil {
					return err
				}
			}
			if job.IsDone(jd.State) {
				return nil
			}
			fn, err := s.makeJobFunc(jd.Typename)
			if err != nil {
				return err
			}
			if _, err := s.runner.Resume(ctx, rw, uid, fn, s.closeCtx); err != nil {
				return err
			}
			return nil
		}
		if err := kv.WithReadWriter(ctx, s.db, resume); err != nil {
			return fmt.Errorf("could not resume job %q: %w", uid, err)
		}
	}
	return nil
}

// runScanLoop is the scanner job body. Each cycle scans the configured games
// and records the results in the price history datastore.
func (s *Server) runScanLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		games := s.configuredGames()
		if len(games) != 0 {
			cctx, cancel := context.WithTimeout(ctx, s.opts.RunDeadline)
			opportunities, err := s.scanner.ScanAll(cctx, games)
			cancel()
			if err != nil {
				metrics.ScanFailures.Inc()
				slog.Warn("scan cycle failed", "games", games, "err", err)
			} else {
				metrics.ScanCycles.Inc()
				for _, o := range opportunities {
					metrics.Opportunities.WithLabelValues(o.Game).Inc()
				}
				s.mu.Lock()
				s.lastScanAt = time.Now()
				s.mu.Unlock()
			}
		}
		ctxutil.Sleep(ctx, s.opts.ScanInterval)
	}
	return context.Cause(ctx)
}

func (s *Server) configuredGames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.state.Games...)
}

// goWatchEvents feeds marketplace push events into the seller.
func (s *Server) goWatchEvents(ctx context.Context) {
	source, ok := s.product.(interface {
		Events() (*topic.Receiver[marketplace.Event], error)
	})
	if !ok {
		return
	}
	receiver, err := source.Events()
	if err != nil {
		slog.Error("could not subscribe to marketplace events", "err", err)
		return
	}
	defer receiver.Close()

	eventCh, err := topic.ReceiveCh(receiver)
	if err != nil {
		slog.Error("could not open marketplace event channel", "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eventCh:
			if err := s.seller.HandleEvent(ctx, &ev); err != nil {
				slog.Warn("could not handle marketplace event", "kind", ev.Kind, "listing", ev.ListingID, "err", err)
			}
		}
	}
}

// goWatchSaleChanges pushes sale state transitions to telegram users and the
// metrics collectors.
func (s *Server) goWatchSaleChanges(ctx context.Context) {
	receiver, err := s.seller.Changes()
	if err != nil {
		slog.Error("could not subscribe to sale changes", "err", err)
		return
	}
	defer receiver.Close()

	changeCh, err := topic.ReceiveCh(receiver)
	if err != nil {
		slog.Error("could not open sale change channel", "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case state := <-changeCh:
			metrics.SaleTransitions.WithLabelValues(state.State).Inc()
			if seller.IsTerminal(state.State) {
				outcome := state.State
				if state.StopLoss && state.State == seller.StateSold {
					outcome = seller.StateStopLoss
				}
				metrics.TradesClosed.WithLabelValues(outcome).Inc()
			}
			s.notifySaleChange(ctx, state)
		}
	}
}

func (s *Server) notifySaleChange(ctx context.Context, state *gobs.ScheduledSaleState) {
	switch state.State {
	case seller.StateSold:
		s.SendMessage(ctx, time.Now(), fmt.Sprintf("item %s sold for %d (bought at %d)", state.ItemID, state.ListedPrice, state.BuyPrice))
	case seller.StateCancelled:
		s.SendMessage(ctx, time.Now(), fmt.Sprintf("sale of item %s was canceled", state.ItemID))
	case seller.StateStopLoss:
		s.SendMessage(ctx, time.Now(), fmt.Sprintf("item %s hit the stop-loss deadline; re-listed at %d", state.ItemID, state.ListedPrice))
	}
}

func (s *Server) SendMessage(ctx context.Context, at time.Time, text string) {
	if s.telegramClient == nil {
		return
	}
	if err := s.telegramClient.SendMessage(ctx, at, text); err != nil {
		slog.Warn("could not send telegram message (ignored)", "err", err)
	}
}

// CacheStats reports the marketplace cache hit/miss/eviction counters.
func (s *Server) CacheStats() (hits, misses, evictions int64) {
	stats := s.mcache.Stats()
	return stats.Hits, stats.Misses, stats.Evictions
}

// HandlerMap returns the daemon api handlers keyed by their mount paths.
func (s *Server) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		api.ScanPath:         httpPostJSONHandler(s.doScan),
		api.SaleSchedulePath: httpPostJSONHandler(s.doSaleSchedule),
		api.SaleListPath:     httpPostJSONHandler(s.doSaleList),
		api.SaleCancelPath:   httpPostJSONHandler(s.doSaleCancel),
		api.TradeListPath:    httpPostJSONHandler(s.doTradeList),
		api.BacktestPath:     httpPostJSONHandler(s.doBacktest),
		api.JobPausePath:     httpPostJSONHandler(s.doPause),
		api.JobResumePath:    httpPostJSONHandler(s.doResume),
		api.JobCancelPath:    httpPostJSONHandler(s.doCancel),
		api.JobListPath:      httpPostJSONHandler(s.doList),
		api.StatusPath:       httpPostJSONHandler(s.doStatus),
	}
}

func httpPostJSONHandler[T1 any, T2 any](fun func(context.Context, *T1) (*T2, error)) http.Handler {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "invalid http method type", http.StatusMethodNotAllowed)
			return
		}
		if v := r.Header.Get("content-type"); !strings.EqualFold(v, "application/json") {
			http.Error(w, "unsupported content type", http.StatusBadRequest)
			return
		}
		req := new(T1)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := fun(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("could not encode response", "err", err)
		}
	}
	return http.HandlerFunc(handler)
}
