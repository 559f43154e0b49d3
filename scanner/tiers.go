// Copyright (c) 2026 BVK Chaitanya

package scanner

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is one of five price brackets bucketing scan targets by item value.
type Tier int

// TierSpec describes one price bracket and its profit floors. Higher tiers
// demand stricter floors because capital is locked up longer.
type TierSpec struct {
	Tier Tier

	// MinPrice and MaxPrice bound the asking price in minor units.
	// MaxPrice of zero means unbounded.
	MinPrice int64
	MaxPrice int64

	// MinProfit is the absolute net profit floor in minor units.
	MinProfit int64

	// MinProfitPct is the net profit floor as a percentage of the buy
	// price.
	MinProfitPct decimal.Decimal
}

func (t *TierSpec) Check() error {
	if t.Tier < 1 || t.Tier > 5 {
		return fmt.Errorf("tier %d is out of range [1..5]", t.Tier)
	}
	if t.MinPrice < 0 || t.MaxPrice < 0 {
		return fmt.Errorf("tier %d price bounds cannot be negative", t.Tier)
	}
	if t.MaxPrice != 0 && t.MinPrice >= t.MaxPrice {
		return fmt.Errorf("tier %d min price must be below max price", t.Tier)
	}
	return nil
}

// DefaultTiers returns the five standard value brackets.
func DefaultTiers() []*TierSpec {
	return []*TierSpec{
		{Tier: 1, MinPrice: 0, MaxPrice: 300, MinProfit: 15, MinProfitPct: decimal.NewFromInt(5)},
		{Tier: 2, MinPrice: 300, MaxPrice: 1000, MinProfit: 25, MinProfitPct: decimal.NewFromInt(5)},
		{Tier: 3, MinPrice: 1000, MaxPrice: 3000, MinProfit: 100, MinProfitPct: decimal.NewFromInt(7)},
		{Tier: 4, MinPrice: 3000, MaxPrice: 10000, MinProfit: 300, MinProfitPct: decimal.NewFromInt(8)},
		{Tier: 5, MinPrice: 10000, MaxPrice: 0, MinProfit: 1000, MinProfitPct: decimal.NewFromInt(10)},
	}
}
