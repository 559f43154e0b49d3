// Copyright (c) 2026 BVK Chaitanya

package scanner

import (
	"github.com/shopspring/decimal"
)

var d100 = decimal.NewFromInt(100)

// passesFloors checks the absolute and percentage profit floors for the
// candidate's tier.
func passesFloors(spec *TierSpec, o *Opportunity) bool {
	if o.NetProfit < spec.MinProfit {
		return false
	}
	return o.ProfitPct.Cmp(spec.MinProfitPct) >= 0
}

// passesAdvancedFilter applies the sale-history and liquidity checks. The
// stat is built over the trailing sales with outliers already rejected.
func (s *Scanner) passesAdvancedFilter(o *Opportunity, stat *SaleHistoryStat) bool {
	if o.LiquidityScore < s.opts.MinLiquidity {
		return false
	}
	if len(s.blacklist) > 0 && s.blacklist[o.Category] {
		return false
	}
	if len(s.whitelist) > 0 && !s.whitelist[o.Category] {
		return false
	}
	if stat.Count == 0 {
		// No sale history at all; nothing supports the projected
		// sell price. TODO: tell newly released items apart from
		// illiquid ones once the history store keeps first-seen times.
		return false
	}
	// The outlier-filtered historical average must support the projected
	// sell price. Selling above what the item actually trades at is
	// wishful thinking, not an opportunity.
	floor := decimal.NewFromInt(o.SellPrice).Mul(s.opts.HistoryFloorPct).Div(d100)
	return decimal.NewFromFloat(stat.FilteredMean).Cmp(floor) >= 0
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// profitPct returns net profit as a percentage of the buy price.
func profitPct(net, buy int64) decimal.Decimal {
	if buy == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(net).Mul(d100).Div(decimal.NewFromInt(buy))
}
