// Copyright (c) 2026 BVK Chaitanya

package scanner

import (
	"slices"

	"github.com/bvk/flipbot/marketplace"
	"github.com/shopspring/decimal"
)

// Opportunity is one ranked, commission-adjusted buy/sell candidate produced
// by a scan cycle. Opportunities are never mutated after creation.
type Opportunity struct {
	Tier Tier

	Game string

	ItemID marketplace.ItemID

	Title string

	Category string

	// BuyListing is the cheapest active ask for the item.
	BuyListing marketplace.ListingID

	// BuyPrice and SellPrice are in minor units. SellPrice is the median
	// of the competing asks above the buy.
	BuyPrice  int64
	SellPrice int64

	// Commission is the marketplace cut on the projected sale, in minor
	// units, already rounded up.
	Commission int64

	Fees int64

	// NetProfit is SellPrice − BuyPrice − Commission − Fees.
	NetProfit int64

	// ProfitPct is NetProfit as a percentage of BuyPrice.
	ProfitPct decimal.Decimal

	LiquidityScore int

	Bucket LiquidityBucket
}

// compareOpportunities orders candidates descending by profit percentage,
// tie-broken by absolute profit and then liquidity score.
func compareOpportunities(a, b *Opportunity) int {
	if c := b.ProfitPct.Cmp(a.ProfitPct); c != 0 {
		return c
	}
	if a.NetProfit != b.NetProfit {
		if a.NetProfit > b.NetProfit {
			return -1
		}
		return 1
	}
	if a.LiquidityScore != b.LiquidityScore {
		if a.LiquidityScore > b.LiquidityScore {
			return -1
		}
		return 1
	}
	return 0
}

func sortOpportunities(os []*Opportunity) {
	slices.SortStableFunc(os, compareOpportunities)
}

// dedupe keeps the highest-profit candidate per item. Input order is
// preserved for the survivors.
func dedupe(os []*Opportunity) []*Opportunity {
	best := make(map[marketplace.ItemID]*Opportunity)
	for _, o := range os {
		if b, ok := best[o.ItemID]; !ok || o.NetProfit > b.NetProfit {
			best[o.ItemID] = o
		}
	}
	result := make([]*Opportunity, 0, len(best))
	for _, o := range os {
		if best[o.ItemID] == o {
			result = append(result, o)
		}
	}
	return result
}
