// Copyright (c) 2026 BVK Chaitanya

// Package gobs holds the types serialized into the key/value database with
// encoding/gob. Fields must stay gob-stable; renaming or retyping a field is
// a data migration.
package gobs

import "time"

// ScheduledSaleState is the persisted form of one resale lifecycle. It is
// saved after every state transition so that a restarted daemon resumes
// exactly where it left off.
type ScheduledSaleState struct {
	UID string

	ItemID string
	Game   string

	// BuyPrice is the purchase price in minor units.
	BuyPrice int64

	// TargetMarginBps is the configured profit margin in basis points.
	TargetMarginBps int64

	// Strategy is the pricing strategy tag: UNDERCUT, MATCH,
	// FIXED-MARGIN or DYNAMIC.
	Strategy string

	// State is one of SCHEDULED, LISTED, SOLD, CANCELLED or
	// STOP-LOSS-TRIGGERED.
	State string

	// ListingID is the active sell listing, empty unless LISTED.
	ListingID string

	// ListedPrice is the current asking price in minor units, zero unless
	// LISTED.
	ListedPrice int64

	// StopLoss is true once the stop-loss re-list has happened; the item
	// stays in STOP-LOSS-TRIGGERED until it sells or is canceled.
	StopLoss bool

	CreatedAt      time.Time
	LastAdjustedAt time.Time

	// PartialFillAt is the time of the most recent partial fill on a
	// stacked listing, zero if none.
	PartialFillAt time.Time

	// Deadline is the stop-loss deadline; zero means the default applies.
	Deadline time.Time

	// Failures counts consecutive failed re-price attempts.
	Failures int

	// Relists counts completed cancel+create cycles.
	Relists int
}
