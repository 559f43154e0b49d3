// Copyright (c) 2026 BVK Chaitanya

package gobs

import "time"

// TradeRecord is the archived outcome of one completed resale. Written when
// a scheduled sale reaches a terminal state and never modified afterwards.
type TradeRecord struct {
	UID string

	ItemID string
	Game   string

	// Prices are minor units. SellPrice and Commission are zero for
	// canceled trades.
	BuyPrice   int64
	SellPrice  int64
	Commission int64
	Fees       int64

	// Outcome is the terminal state: SOLD, CANCELLED or
	// STOP-LOSS-TRIGGERED.
	Outcome string

	Strategy string

	BoughtAt time.Time
	ClosedAt time.Time
}
