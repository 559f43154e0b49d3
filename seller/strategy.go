// Copyright (c) 2026 BVK Chaitanya

package seller

import (
	"fmt"
)

// Strategy selects how the asking price is computed from the best competing
// ask. The set is closed; a strategy is chosen once when the sale is
// scheduled and never changes over the item's lifetime.
type Strategy string

const (
	// Undercut lists one minor unit below the best competing ask.
	Undercut Strategy = "UNDERCUT"

	// Match lists at the best competing ask.
	Match Strategy = "MATCH"

	// FixedMargin lists at buy price plus the configured margin,
	// ignoring competitors.
	FixedMargin Strategy = "FIXED-MARGIN"

	// Dynamic undercuts the best competing ask but never below the
	// fixed-margin price.
	Dynamic Strategy = "DYNAMIC"
)

func ParseStrategy(s string) (Strategy, error) {
	switch v := Strategy(s); v {
	case Undercut, Match, FixedMargin, Dynamic:
		return v, nil
	}
	return "", fmt.Errorf("strategy %q is not one of UNDERCUT, MATCH, FIXED-MARGIN or DYNAMIC", s)
}

// marginPrice returns buy scaled up by the margin in basis points, rounded
// up to the next minor unit.
func marginPrice(buy, marginBps int64) int64 {
	return (buy*(10000+marginBps) + 9999) / 10000
}

// computePrice returns the asking price for the given buy price, best
// competing ask (zero when there is no competitor) and target margin. The
// result never falls below buy×(1+minMargin), whatever the strategy says.
func computePrice(strategy Strategy, buy, best, marginBps, minMarginBps int64) int64 {
	fixed := marginPrice(buy, marginBps)

	var price int64
	switch strategy {
	case Undercut:
		price = best - 1
	case Match:
		price = best
	case FixedMargin:
		price = fixed
	case Dynamic:
		price = best - 1
		if price < fixed {
			price = fixed
		}
	}
	if best == 0 && strategy != FixedMargin {
		// No competitor to price against; fall back to the margin
		// price.
		price = fixed
	}

	if floor := marginPrice(buy, minMarginBps); price < floor {
		price = floor
	}
	return price
}
