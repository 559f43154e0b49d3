// Copyright (c) 2026 BVK Chaitanya

package gobs

import "time"

// PricePoint is one observed price for an item: either a completed sale from
// the marketplace's history endpoint or the lowest ask seen during a scan.
type PricePoint struct {
	// Price is in minor units.
	Price int64

	Time time.Time

	// Kind is "SALE" or "ASK".
	Kind string
}

// PriceHistory is the persisted price series for one item within one day.
// The scanner appends points as it observes them; the backtest loader reads
// consecutive days back into one series.
type PriceHistory struct {
	ItemID string
	Game   string

	// Day is the UTC day the points fall into, formatted 2006-01-02.
	Day string

	Points []*PricePoint
}
