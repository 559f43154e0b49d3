// Copyright (c) 2026 BVK Chaitanya

// Package seller owns purchased items from scheduling through listing and
// periodic re-pricing to a terminal state. One background monitor loop
// drives every active sale; the marketplace only supports cancel+create, so
// a price adjustment is always a new listing.
package seller

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bvk/flipbot/ctxutil"
	"github.com/bvk/flipbot/gobs"
	"github.com/bvk/flipbot/marketplace"
	"github.com/bvk/flipbot/syncmap"
	"github.com/google/uuid"
	"github.com/visvasity/topic"
)

type Options struct {
	// MonitorInterval is the delay between re-pricing ticks.
	MonitorInterval time.Duration

	// MinMarginBps clamps every computed price to at least
	// buy×(1+MinMarginBps/10000), whatever the strategy computes.
	MinMarginBps int64

	// TargetMarginBps is the default margin when a sale is scheduled
	// without one.
	TargetMarginBps int64

	// StopLossDeadline is how long an item may stay listed before the
	// forced liquidation kicks in.
	StopLossDeadline time.Duration

	// StopLossBps is the discount below the buy price for the forced
	// liquidation listing.
	StopLossBps int64

	// RepriceDelta is the minimal price difference that justifies a
	// cancel+create cycle.
	RepriceDelta int64

	// MaxFailures is the consecutive re-price failure count after which
	// a sale is given up and canceled.
	MaxFailures int

	// ListingLimit bounds the competitor-price query.
	ListingLimit int

	// ResetDeadlineOnPartialFill restarts the stop-loss clock whenever
	// part of a stacked listing fills.
	ResetDeadlineOnPartialFill bool

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

func (v *Options) setDefaults() {
	if v.MonitorInterval == 0 {
		v.MonitorInterval = 5 * time.Minute
	}
	if v.MinMarginBps == 0 {
		v.MinMarginBps = 200
	}
	if v.TargetMarginBps == 0 {
		v.TargetMarginBps = 1000
	}
	if v.StopLossDeadline == 0 {
		v.StopLossDeadline = 48 * time.Hour
	}
	if v.StopLossBps == 0 {
		v.StopLossBps = 500
	}
	if v.RepriceDelta == 0 {
		v.RepriceDelta = 1
	}
	if v.MaxFailures == 0 {
		v.MaxFailures = 5
	}
	if v.ListingLimit == 0 {
		v.ListingLimit = 200
	}
	if v.Clock == nil {
		v.Clock = time.Now
	}
}

func (v *Options) Check() error {
	if v.MonitorInterval < 0 {
		return fmt.Errorf("monitor interval cannot be negative")
	}
	if v.MinMarginBps < 0 || v.MinMarginBps > 10000 {
		return fmt.Errorf("minimum margin %d bps is out of range", v.MinMarginBps)
	}
	if v.TargetMarginBps < v.MinMarginBps {
		return fmt.Errorf("target margin cannot be below the minimum margin")
	}
	if v.StopLossBps < 0 || v.StopLossBps >= 10000 {
		return fmt.Errorf("stop-loss discount %d bps is out of range", v.StopLossBps)
	}
	if v.RepriceDelta < 0 {
		return fmt.Errorf("re-price delta cannot be negative")
	}
	if v.MaxFailures < 1 {
		return fmt.Errorf("max failures must be positive")
	}
	return nil
}

// Seller runs the resale state machine for every scheduled sale. All
// methods are safe for concurrent use.
type Seller struct {
	opts Options

	product marketplace.Marketplace

	repo Repository

	saleMap syncmap.Map[string, *Sale]

	// changes carries a snapshot after every persisted state
	// transition; the notifier forwards them to the user.
	changes *topic.Topic[*gobs.ScheduledSaleState]
}

func New(product marketplace.Marketplace, repo Repository, opts *Options) (*Seller, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	s := &Seller{
		opts:    *opts,
		product: product,
		repo:    repo,
		changes: topic.New[*gobs.ScheduledSaleState](),
	}
	return s, nil
}

func (s *Seller) Close() error {
	s.changes.Close()
	return nil
}

// Changes subscribes to sale state transitions.
func (s *Seller) Changes() (*topic.Receiver[*gobs.ScheduledSaleState], error) {
	return topic.Subscribe(s.changes, 16, true)
}

// Resume loads every non-terminal sale from the repository. Terminal sales
// found in the sales keyspace are archived away.
func (s *Seller) Resume(ctx context.Context) error {
	states, err := s.repo.ListSales(ctx)
	if err != nil {
		return fmt.Errorf("could not list persisted sales: %w", err)
	}
	for _, state := range states {
		if IsTerminal(state.State) {
			if err := s.archive(ctx, state); err != nil {
				return err
			}
			continue
		}
		sale, err := loadSale(state)
		if err != nil {
			return err
		}
		s.saleMap.Store(sale.UID(), sale)
	}
	return nil
}

// Schedule creates a new sale for a purchased item and immediately tries to
// list it. A failed first listing is not an error; the monitor retries on
// the next tick.
func (s *Seller) Schedule(ctx context.Context, item marketplace.ItemID, game string, buyPrice int64, strategy Strategy, marginBps int64) (*gobs.ScheduledSaleState, error) {
	if len(item) == 0 {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if buyPrice <= 0 {
		return nil, fmt.Errorf("buy price must be positive")
	}
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	if marginBps == 0 {
		marginBps = s.opts.TargetMarginBps
	}
	if marginBps < s.opts.MinMarginBps {
		return nil, fmt.Errorf("margin %d bps is below the minimum %d bps", marginBps, s.opts.MinMarginBps)
	}

	sale := newSale(uuid.NewString(), item, game, buyPrice, marginBps, strategy, s.opts.Clock())
	if err := s.save(ctx, sale); err != nil {
		return nil, err
	}
	s.saleMap.Store(sale.UID(), sale)

	if err := s.list(ctx, sale); err != nil {
		log.Printf("%s: could not list item %s right away (will retry): %v", sale.UID(), item, err)
	}
	return sale.State(), nil
}

// ActiveSales returns a snapshot of every non-terminal sale.
func (s *Seller) ActiveSales() []*gobs.ScheduledSaleState {
	var states []*gobs.ScheduledSaleState
	s.saleMap.Range(func(uid string, sale *Sale) bool {
		if state := sale.State(); !IsTerminal(state.State) {
			states = append(states, state)
		}
		return true
	})
	return states
}

// Trades returns the archived outcomes of finished sales.
func (s *Seller) Trades(ctx context.Context) ([]*gobs.TradeRecord, error) {
	return s.repo.ListTrades(ctx)
}

// CancelSale is the manual intervention: withdraw the listing, if any, and
// finalize the sale as CANCELLED.
func (s *Seller) CancelSale(ctx context.Context, uid string) error {
	sale, ok := s.saleMap.Load(uid)
	if !ok {
		return fmt.Errorf("sale %s is not active", uid)
	}
	return s.cancel(ctx, sale)
}

// HandleEvent applies one marketplace push event to the matching sale.
func (s *Seller) HandleEvent(ctx context.Context, ev *marketplace.Event) error {
	sale := s.findByListing(ev.ListingID)
	if sale == nil {
		return nil
	}
	switch ev.Kind {
	case marketplace.EventSold:
		changed, err := sale.markSold(s.opts.Clock())
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if err := s.save(ctx, sale); err != nil {
			return err
		}
		state := sale.State()
		log.Printf("%s: item %s sold at %d (bought at %d)", state.UID, state.ItemID, ev.Price, state.BuyPrice)
		return s.finalize(ctx, sale, ev.Price)

	case marketplace.EventPartialFill:
		sale.markPartialFill(ev.Time)
		return s.save(ctx, sale)

	case marketplace.EventListingGone:
		// The listing vanished without a sale confirmation. Back to
		// SCHEDULED semantics: re-list on the next tick.
		log.Printf("%s: listing %s is gone; will re-list on the next tick", sale.UID(), ev.ListingID)
		return nil
	}
	return nil
}

// Run is the monitor loop. It finishes the tick in progress before
// returning on cancellation.
func (s *Seller) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		s.runTick(ctx)
		ctxutil.Sleep(ctx, s.opts.MonitorInterval)
	}
	return context.Cause(ctx)
}

// runTick processes every active sale once. The tick in progress always
// completes, even when the run context is already canceled.
func (s *Seller) runTick(ctx context.Context) {
	tickCtx := context.WithoutCancel(ctx)
	s.saleMap.Range(func(uid string, sale *Sale) bool {
		if err := s.tickSale(tickCtx, sale); err != nil {
			log.Printf("%s: tick failed (will retry): %v", uid, err)
			if n := sale.recordFailure(); n >= s.opts.MaxFailures {
				log.Printf("%s: giving up after %d consecutive failures", uid, n)
				if err := s.cancel(tickCtx, sale); err != nil {
					log.Printf("%s: could not cancel failed sale: %v", uid, err)
				}
			}
		}
		return true
	})
}

func (s *Seller) tickSale(ctx context.Context, sale *Sale) error {
	switch state := sale.State(); state.State {
	case StateScheduled:
		return s.list(ctx, sale)

	case StateListed:
		if s.deadlinePassed(state) {
			return s.triggerStopLoss(ctx, sale)
		}
		return s.reprice(ctx, sale)

	case StateStopLoss:
		// Forced liquidation listing stays put until it fills or the
		// user cancels.
		return nil

	default:
		s.saleMap.Delete(sale.UID())
		return nil
	}
}

func (s *Seller) deadlinePassed(state *gobs.ScheduledSaleState) bool {
	deadline := state.Deadline
	if deadline.IsZero() {
		base := state.CreatedAt
		if s.opts.ResetDeadlineOnPartialFill && state.PartialFillAt.After(base) {
			base = state.PartialFillAt
		}
		deadline = base.Add(s.opts.StopLossDeadline)
	}
	return !s.opts.Clock().Before(deadline)
}

// list places the initial sell listing for a SCHEDULED sale.
func (s *Seller) list(ctx context.Context, sale *Sale) error {
	state := sale.State()
	best, err := s.bestCompetitor(ctx, state)
	if err != nil {
		return err
	}
	price := computePrice(sale.strategy, state.BuyPrice, best, state.TargetMarginBps, s.opts.MinMarginBps)
	id, err := s.product.Sell(ctx, marketplace.ItemID(state.ItemID), price)
	if err != nil {
		return fmt.Errorf("could not list item %s at %d: %w", state.ItemID, price, err)
	}
	if err := sale.markListed(id, price, s.opts.Clock()); err != nil {
		return err
	}
	log.Printf("%s: listed item %s at %d as %s", sale.UID(), state.ItemID, price, id)
	return s.save(ctx, sale)
}

// reprice re-queries the best competing ask and re-lists when the computed
// price moved beyond the minimal delta. The marketplace has no price
// update, so this is always cancel+create.
func (s *Seller) reprice(ctx context.Context, sale *Sale) error {
	state := sale.State()
	best, err := s.bestCompetitor(ctx, state)
	if err != nil {
		return err
	}
	price := computePrice(sale.strategy, state.BuyPrice, best, state.TargetMarginBps, s.opts.MinMarginBps)
	if diff := price - state.ListedPrice; diff >= -s.opts.RepriceDelta && diff <= s.opts.RepriceDelta {
		return nil
	}

	if err := s.product.Cancel(ctx, marketplace.ListingID(state.ListingID)); err != nil {
		return fmt.Errorf("could not cancel listing %s: %w", state.ListingID, err)
	}
	id, err := s.product.Sell(ctx, marketplace.ItemID(state.ItemID), price)
	if err != nil {
		return fmt.Errorf("could not re-list item %s at %d: %w", state.ItemID, price, err)
	}
	if err := sale.markListed(id, price, s.opts.Clock()); err != nil {
		return err
	}
	log.Printf("%s: re-priced item %s from %d to %d as %s", sale.UID(), state.ItemID, state.ListedPrice, price, id)
	return s.save(ctx, sale)
}

// triggerStopLoss forces liquidation of an item listed past its deadline:
// cancel the listing and re-list below cost.
func (s *Seller) triggerStopLoss(ctx context.Context, sale *Sale) error {
	state := sale.State()
	price := state.BuyPrice * (10000 - s.opts.StopLossBps) / 10000
	if price <= 0 {
		price = 1
	}
	if err := s.product.Cancel(ctx, marketplace.ListingID(state.ListingID)); err != nil {
		return fmt.Errorf("could not cancel listing %s: %w", state.ListingID, err)
	}
	id, err := s.product.Sell(ctx, marketplace.ItemID(state.ItemID), price)
	if err != nil {
		return fmt.Errorf("could not place stop-loss listing for item %s: %w", state.ItemID, err)
	}
	if err := sale.markStopLoss(id, price, s.opts.Clock()); err != nil {
		return err
	}
	log.Printf("%s: stop-loss triggered for item %s; re-listed at %d (bought at %d)", sale.UID(), state.ItemID, price, state.BuyPrice)
	return s.save(ctx, sale)
}

func (s *Seller) cancel(ctx context.Context, sale *Sale) error {
	state := sale.State()
	if len(state.ListingID) != 0 {
		if err := s.product.Cancel(ctx, marketplace.ListingID(state.ListingID)); err != nil {
			log.Printf("%s: could not withdraw listing %s (ignored): %v", state.UID, state.ListingID, err)
		}
	}
	if err := sale.markCancelled(s.opts.Clock()); err != nil {
		return err
	}
	if err := s.save(ctx, sale); err != nil {
		return err
	}
	return s.finalize(ctx, sale, 0)
}

// bestCompetitor returns the lowest competing ask for the sale's item,
// excluding our own listing. Zero when there is no competitor.
func (s *Seller) bestCompetitor(ctx context.Context, state *gobs.ScheduledSaleState) (int64, error) {
	filters := &marketplace.ListingFilters{Limit: s.opts.ListingLimit}
	snap, err := s.product.Listings(ctx, state.Game, filters)
	if err != nil {
		return 0, fmt.Errorf("could not fetch competing asks: %w", err)
	}
	var best int64
	for _, l := range snap.Listings {
		if string(l.ItemID) != state.ItemID || string(l.ListingID) == state.ListingID {
			continue
		}
		if best == 0 || l.Price < best {
			best = l.Price
		}
	}
	return best, nil
}

// save persists the sale and publishes the snapshot to subscribers.
func (s *Seller) save(ctx context.Context, sale *Sale) error {
	state := sale.State()
	if err := s.repo.SaveSale(ctx, state); err != nil {
		return fmt.Errorf("could not save sale %s: %w", state.UID, err)
	}
	s.changes.Send(state)
	return nil
}

// finalize archives a terminal sale as a trade record and drops it from the
// active map.
func (s *Seller) finalize(ctx context.Context, sale *Sale, sellPrice int64) error {
	state := sale.State()
	record := &gobs.TradeRecord{
		UID:       state.UID,
		ItemID:    state.ItemID,
		Game:      state.Game,
		BuyPrice:  state.BuyPrice,
		SellPrice: sellPrice,
		Outcome:   state.State,
		Strategy:  state.Strategy,
		BoughtAt:  state.CreatedAt,
		ClosedAt:  s.opts.Clock(),
	}
	if state.StopLoss && state.State == StateSold {
		// A fill on the forced liquidation listing is a stop-loss
		// outcome, not a win.
		record.Outcome = StateStopLoss
	}
	if err := s.repo.ArchiveTrade(ctx, record); err != nil {
		return fmt.Errorf("could not archive trade %s: %w", state.UID, err)
	}
	if err := s.repo.DeleteSale(ctx, state.UID); err != nil {
		return fmt.Errorf("could not remove archived sale %s: %w", state.UID, err)
	}
	s.saleMap.Delete(state.UID)
	return nil
}

func (s *Seller) findByListing(id marketplace.ListingID) *Sale {
	var found *Sale
	s.saleMap.Range(func(uid string, sale *Sale) bool {
		if sale.State().ListingID == string(id) {
			found = sale
			return false
		}
		return true
	})
	return found
}

// archive moves an already-terminal persisted sale out of the sales
// keyspace during resume.
func (s *Seller) archive(ctx context.Context, state *gobs.ScheduledSaleState) error {
	sale := &Sale{state: *state}
	return s.finalize(ctx, sale, 0)
}
