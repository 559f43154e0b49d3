// Copyright (c) 2026 BVK Chaitanya

// Package scanner finds arbitrage opportunities on the marketplace. A scan
// groups the live asks of one (game, tier) bracket by item, projects a resale
// price from the competing asks, subtracts the liquidity-bucketed commission
// and rejects everything below the tier's profit floors and the sale-history
// filters. Tier/game scans run concurrently; the marketplace client's rate
// limiter is the only concurrency bound.
package scanner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/bvk/flipbot/cache"
	"github.com/bvk/flipbot/marketplace"
	"github.com/shopspring/decimal"
)

// Recorder receives the price points a scan observes. The daemon plugs in
// the persistent history store here; a nil Recorder disables recording.
type Recorder interface {
	RecordAsks(ctx context.Context, game string, listings []*marketplace.Listing) error
	RecordSales(ctx context.Context, game string, item marketplace.ItemID, records []*marketplace.SaleRecord) error
}

type Options struct {
	// Tiers defines the price brackets and their profit floors.
	Tiers []*TierSpec

	// Commissions maps liquidity buckets to commission rates.
	Commissions CommissionTable

	// SellDepth is how many competing asks above the buy feed the median
	// that projects the resale price.
	SellDepth int

	// FixedFees is a flat per-trade fee in minor units, on top of the
	// percentage commission.
	FixedFees int64

	// HistoryLimit is how many trailing sales feed the SaleHistoryStat.
	HistoryLimit int

	// OutlierSigma is the z-score bound for rejecting outlier sale
	// points before averaging.
	OutlierSigma float64

	// HistoryFloorPct requires the outlier-filtered historical average
	// to be at least this percentage of the projected sell price.
	HistoryFloorPct decimal.Decimal

	// MinLiquidity is the minimum liquidity score. Items below it are
	// rejected no matter how profitable they look.
	MinLiquidity int

	// Blacklist and Whitelist restrict item categories. An empty
	// whitelist admits every category not blacklisted.
	Blacklist []string
	Whitelist []string

	// CommissionOnBuySide charges the commission on the buy price
	// instead of the projected sell price.
	CommissionOnBuySide bool

	// ListingLimit bounds how many listings one tier/game fetch asks
	// for.
	ListingLimit int
}

func (v *Options) setDefaults() {
	if len(v.Tiers) == 0 {
		v.Tiers = DefaultTiers()
	}
	if v.Commissions == nil {
		v.Commissions = DefaultCommissions()
	}
	if v.SellDepth == 0 {
		v.SellDepth = 5
	}
	if v.HistoryLimit == 0 {
		v.HistoryLimit = 20
	}
	if v.OutlierSigma == 0 {
		v.OutlierSigma = 2
	}
	if v.HistoryFloorPct.IsZero() {
		v.HistoryFloorPct = decimal.NewFromInt(90)
	}
	if v.MinLiquidity == 0 {
		v.MinLiquidity = 3
	}
	if v.ListingLimit == 0 {
		v.ListingLimit = 500
	}
}

func (v *Options) Check() error {
	for _, spec := range v.Tiers {
		if err := spec.Check(); err != nil {
			return err
		}
	}
	if err := v.Commissions.Check(); err != nil {
		return err
	}
	if v.SellDepth < 1 {
		return fmt.Errorf("sell depth must be positive")
	}
	if v.FixedFees < 0 {
		return fmt.Errorf("fixed fees cannot be negative")
	}
	if v.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be positive")
	}
	if v.OutlierSigma < 0 {
		return fmt.Errorf("outlier sigma cannot be negative")
	}
	if v.HistoryFloorPct.IsNegative() {
		return fmt.Errorf("history floor percentage cannot be negative")
	}
	return nil
}

// Scanner computes ranked arbitrage opportunities. It is safe for
// concurrent use.
type Scanner struct {
	opts Options

	product marketplace.Marketplace

	cache *cache.Cache

	recorder Recorder

	blacklist map[string]bool
	whitelist map[string]bool
}

func New(product marketplace.Marketplace, mcache *cache.Cache, recorder Recorder, opts *Options) (*Scanner, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	s := &Scanner{
		opts:      *opts,
		product:   product,
		cache:     mcache,
		recorder:  recorder,
		blacklist: toSet(opts.Blacklist),
		whitelist: toSet(opts.Whitelist),
	}
	return s, nil
}

func (s *Scanner) tierSpec(tier Tier) *TierSpec {
	for _, spec := range s.opts.Tiers {
		if spec.Tier == tier {
			return spec
		}
	}
	return nil
}

// Scan runs one tier/game cycle and returns the ranked opportunities.
func (s *Scanner) Scan(ctx context.Context, game string, tier Tier) ([]*Opportunity, error) {
	spec := s.tierSpec(tier)
	if spec == nil {
		return nil, fmt.Errorf("tier %d has no spec", tier)
	}

	snap, err := s.fetchListings(ctx, game, spec)
	if err != nil {
		return nil, fmt.Errorf("could not fetch tier %d listings for game %q: %w", tier, game, err)
	}
	if s.recorder != nil {
		if err := s.recorder.RecordAsks(ctx, game, snap.Listings); err != nil {
			log.Printf("warning: could not record observed asks (ignored): %v", err)
		}
	}

	var candidates []*Opportunity
	for item, asks := range groupByItem(snap.Listings) {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		cand, stat, err := s.evaluate(ctx, game, spec, item, asks)
		if err != nil {
			return nil, err
		}
		if cand == nil {
			continue
		}
		if !passesFloors(spec, cand) {
			continue
		}
		if !s.passesAdvancedFilter(cand, stat) {
			continue
		}
		candidates = append(candidates, cand)
	}

	candidates = dedupe(candidates)
	sortOpportunities(candidates)
	return candidates, nil
}

// ScanAll runs every configured tier for every game concurrently and merges
// the results. A failure on one tier/game is logged and skipped; the merged
// result is partial, not an error. Only context cancellation aborts the
// whole cycle.
func (s *Scanner) ScanAll(ctx context.Context, games []string) ([]*Opportunity, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var merged []*Opportunity

	for _, game := range games {
		for _, spec := range s.opts.Tiers {
			wg.Add(1)
			go func(game string, tier Tier) {
				defer wg.Done()
				os, err := s.Scan(ctx, game, tier)
				if err != nil {
					if ctx.Err() == nil {
						log.Printf("warning: tier %d scan for game %q has failed (skipped): %v", tier, game, err)
					}
					return
				}
				mu.Lock()
				merged = append(merged, os...)
				mu.Unlock()
			}(game, spec.Tier)
		}
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}
	merged = dedupe(merged)
	sortOpportunities(merged)
	return merged, nil
}

// fetchListings returns the tier/game snapshot, served from the cache when
// fresh. Nothing is cached after the context is canceled, so an aborted
// scan leaves no partially observed snapshot behind.
func (s *Scanner) fetchListings(ctx context.Context, game string, spec *TierSpec) (*marketplace.Snapshot, error) {
	key := fmt.Sprintf("/listings/%s/tier%d", game, spec.Tier)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(*marketplace.Snapshot), nil
		}
	}
	filters := &marketplace.ListingFilters{
		MinPrice: spec.MinPrice,
		MaxPrice: spec.MaxPrice,
		Limit:    s.opts.ListingLimit,
	}
	snap, err := s.product.Listings(ctx, game, filters)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && ctx.Err() == nil {
		s.cache.Put(key, snap, cache.Listings)
	}
	return snap, nil
}

// fetchHistory returns the trailing sale records for an item, served from
// the cache when fresh.
func (s *Scanner) fetchHistory(ctx context.Context, game string, item marketplace.ItemID) ([]*marketplace.SaleRecord, error) {
	key := fmt.Sprintf("/sale-history/%s", item)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.([]*marketplace.SaleRecord), nil
		}
	}
	records, err := s.product.SaleHistory(ctx, item, s.opts.HistoryLimit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && ctx.Err() == nil {
		s.cache.Put(key, records, cache.SaleHistory)
	}
	if s.recorder != nil {
		if err := s.recorder.RecordSales(ctx, game, item, records); err != nil {
			log.Printf("warning: could not record sale history for item %s (ignored): %v", item, err)
		}
	}
	return records, nil
}

// evaluate builds one candidate for an item group. Returns a nil candidate
// when the group cannot support a resale projection.
func (s *Scanner) evaluate(ctx context.Context, game string, spec *TierSpec, item marketplace.ItemID, asks []*marketplace.Listing) (*Opportunity, *SaleHistoryStat, error) {
	if len(asks) < 2 {
		// No competing ask to project a resale price from.
		return nil, nil, nil
	}
	buy := asks[0]
	sell := medianAsk(asks[1:], buy.Price, s.opts.SellDepth)
	if sell <= buy.Price {
		return nil, nil, nil
	}

	records, err := s.fetchHistory(ctx, game, item)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch sale history for item %s: %w", item, err)
	}
	stat := BuildStat(records, s.opts.OutlierSigma)

	score := len(asks) + stat.Count
	bucket := bucketForScore(score)

	base := sell
	if s.opts.CommissionOnBuySide {
		base = buy.Price
	}
	commission := s.opts.Commissions.Commission(base, bucket)
	net := sell - buy.Price - commission - s.opts.FixedFees

	cand := &Opportunity{
		Tier:           spec.Tier,
		Game:           game,
		ItemID:         item,
		Title:          buy.Title,
		Category:       buy.Attributes["category"],
		BuyListing:     buy.ListingID,
		BuyPrice:       buy.Price,
		SellPrice:      sell,
		Commission:     commission,
		Fees:           s.opts.FixedFees,
		NetProfit:      net,
		ProfitPct:      profitPct(net, buy.Price),
		LiquidityScore: score,
		Bucket:         bucket,
	}
	return cand, stat, nil
}

// groupByItem buckets listings by item identity, cheapest ask first.
func groupByItem(listings []*marketplace.Listing) map[marketplace.ItemID][]*marketplace.Listing {
	groups := make(map[marketplace.ItemID][]*marketplace.Listing)
	for _, l := range listings {
		groups[l.ItemID] = append(groups[l.ItemID], l)
	}
	for _, asks := range groups {
		sort.Slice(asks, func(i, j int) bool {
			return asks[i].Price < asks[j].Price
		})
	}
	return groups
}

// medianAsk returns the median of up to depth asks strictly above the buy
// price. Zero when no ask qualifies.
func medianAsk(asks []*marketplace.Listing, buy int64, depth int) int64 {
	var prices []int64
	for _, a := range asks {
		if a.Price > buy {
			prices = append(prices, a.Price)
			if len(prices) == depth {
				break
			}
		}
	}
	n := len(prices)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}
