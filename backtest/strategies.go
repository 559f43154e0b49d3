// Copyright (c) 2026 BVK Chaitanya

package backtest

import (
	"fmt"
	"sort"

	"github.com/bvk/flipbot/gobs"
)

// Strategy ids accepted by Lookup.
const (
	MeanReversionID = "mean-reversion"
	FlipID          = "flip"
	BuyAndHoldID    = "buy-and-hold"
)

// Lookup returns a fresh instance of the named built-in strategy.
func Lookup(id string) (Strategy, error) {
	switch id {
	case MeanReversionID:
		return newMeanReversion(20, 500, 1000), nil
	case FlipID:
		return newFlip(20, 500, 1000), nil
	case BuyAndHoldID:
		return &buyAndHold{}, nil
	}
	return nil, fmt.Errorf("strategy id %q is not one of %v", id, StrategyIDs())
}

func StrategyIDs() []string {
	return []string{MeanReversionID, FlipID, BuyAndHoldID}
}

// meanReversion buys when the price dips below the trailing mean and sells
// once the position shows the target margin over its cost basis.
type meanReversion struct {
	window    int
	entryBps  int64
	targetBps int64

	trailing []int64
}

func newMeanReversion(window int, entryBps, targetBps int64) *meanReversion {
	return &meanReversion{window: window, entryBps: entryBps, targetBps: targetBps}
}

func (s *meanReversion) Name() string { return MeanReversionID }

func (s *meanReversion) trailingMean() int64 {
	if len(s.trailing) == 0 {
		return 0
	}
	var sum int64
	for _, p := range s.trailing {
		sum += p
	}
	return sum / int64(len(s.trailing))
}

func (s *meanReversion) observe(price int64) {
	s.trailing = append(s.trailing, price)
	if len(s.trailing) > s.window {
		s.trailing = s.trailing[1:]
	}
}

func (s *meanReversion) ShouldBuy(point *gobs.PricePoint, position *Position) bool {
	mean := s.trailingMean()
	s.observe(point.Price)
	if len(s.trailing) < s.window || mean == 0 {
		return false
	}
	entry := mean * (10000 - s.entryBps) / 10000
	return point.Price <= entry
}

func (s *meanReversion) ShouldSell(point *gobs.PricePoint, position *Position) bool {
	target := position.AvgCost() * (10000 + s.targetBps) / 10000
	return point.Price >= target
}

// flip mirrors the live trading loop: buy below the trailing median the way
// the scanner hunts underpriced asks, sell at cost plus margin the way the
// auto-seller lists.
type flip struct {
	window      int
	discountBps int64
	marginBps   int64

	trailing []int64
}

func newFlip(window int, discountBps, marginBps int64) *flip {
	return &flip{window: window, discountBps: discountBps, marginBps: marginBps}
}

func (s *flip) Name() string { return FlipID }

func (s *flip) trailingMedian() int64 {
	if len(s.trailing) == 0 {
		return 0
	}
	sorted := make([]int64, len(s.trailing))
	copy(sorted, s.trailing)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func (s *flip) observe(price int64) {
	s.trailing = append(s.trailing, price)
	if len(s.trailing) > s.window {
		s.trailing = s.trailing[1:]
	}
}

func (s *flip) ShouldBuy(point *gobs.PricePoint, position *Position) bool {
	median := s.trailingMedian()
	s.observe(point.Price)
	if len(s.trailing) < s.window || median == 0 {
		return false
	}
	entry := median * (10000 - s.discountBps) / 10000
	return point.Price <= entry
}

func (s *flip) ShouldSell(point *gobs.PricePoint, position *Position) bool {
	target := (position.AvgCost()*(10000+s.marginBps) + 9999) / 10000
	return point.Price >= target
}

// buyAndHold buys once and never sells. Useful as a baseline.
type buyAndHold struct{}

func (s *buyAndHold) Name() string { return BuyAndHoldID }

func (s *buyAndHold) ShouldBuy(point *gobs.PricePoint, position *Position) bool {
	// Keep asking until a buy is admitted; an unaffordable first
	// point must not lock out the baseline forever.
	return position.Quantity == 0
}

func (s *buyAndHold) ShouldSell(point *gobs.PricePoint, position *Position) bool {
	return false
}
