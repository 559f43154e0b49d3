// Copyright (c) 2026 BVK Chaitanya

// Package marketplace defines the contract between the trading core and the
// peer-to-peer marketplace backend. The core only depends on the abstract
// operations below; wire formats, authentication and transport behavior are
// the concrete client's problem.
//
// All prices are integer minor units (e.g. cents). Snapshots returned by
// Listings and SaleHistory are immutable; callers must not modify them.
package marketplace

import (
	"context"
	"io"
	"time"
)

// ListingID identifies one sell offer on the marketplace.
type ListingID string

// ItemID identifies an item kind (all listings of the same skin share one
// item id).
type ItemID string

// Listing is one observed sell offer. It is a point-in-time snapshot and is
// never mutated after creation.
type Listing struct {
	ListingID ListingID

	ItemID ItemID

	Title string

	Game string

	// Price is the asking price in minor units.
	Price int64

	// Attributes holds marketplace-specific item properties (wear, pattern,
	// stickers, etc.) that some filters care about.
	Attributes map[string]string

	ObservedAt RemoteTime
}

// Snapshot is the result of one Listings call for a single game.
type Snapshot struct {
	Game string

	TakenAt RemoteTime

	Listings []*Listing
}

// ListingFilters narrows a Listings query. A zero filter returns the
// marketplace default ordering, cheapest offers first.
type ListingFilters struct {
	// MinPrice and MaxPrice bound the asking price, inclusive, in minor
	// units. Zero means unbounded.
	MinPrice int64
	MaxPrice int64

	// Category restricts results to one item category.
	Category string

	// Limit bounds the number of returned listings. Zero means the
	// marketplace default.
	Limit int
}

// SaleRecord is one completed sale of an item, as reported by the
// marketplace's sale-history endpoint.
type SaleRecord struct {
	ItemID ItemID

	// Price is the sale price in minor units.
	Price int64

	SoldAt RemoteTime
}

// Confirmation reports a completed buy or a filled sell order.
type Confirmation struct {
	ListingID ListingID

	ItemID ItemID

	// Price is the executed price in minor units.
	Price int64

	Time RemoteTime
}

// Marketplace is the set of operations the trading core consumes. The
// concrete implementation is expected to absorb transient transport failures
// internally and surface only the typed errors defined in this package.
type Marketplace interface {
	io.Closer

	// Listings returns the current sell offers for a game.
	Listings(ctx context.Context, game string, filters *ListingFilters) (*Snapshot, error)

	// Balance returns the available account balance in minor units.
	Balance(ctx context.Context) (int64, error)

	// Buy purchases the given listing at the given price. The price must
	// match the listed price exactly; the marketplace rejects stale buys.
	Buy(ctx context.Context, id ListingID, price int64) (*Confirmation, error)

	// Sell places a sell offer for an owned item and returns the new
	// listing id.
	Sell(ctx context.Context, item ItemID, price int64) (ListingID, error)

	// Cancel withdraws a sell offer. Canceling an already-filled or
	// already-canceled listing returns ErrInvalid.
	Cancel(ctx context.Context, id ListingID) error

	// SaleHistory returns up to limit most-recent completed sales for an
	// item, newest first.
	SaleHistory(ctx context.Context, item ItemID, limit int) ([]*SaleRecord, error)
}

// EventKind classifies marketplace push events.
type EventKind string

const (
	// EventSold reports that one of our sell listings was filled.
	EventSold EventKind = "SOLD"

	// EventListingGone reports that a listing we were tracking was
	// removed (bought by someone else or withdrawn).
	EventListingGone EventKind = "LISTING-GONE"

	// EventPartialFill reports that part of a stacked listing was
	// filled while the rest stays listed.
	EventPartialFill EventKind = "PARTIAL-FILL"
)

// Event is one push notification from the marketplace event stream.
type Event struct {
	Kind EventKind

	ListingID ListingID
	ItemID    ItemID

	// Price is the executed price in minor units, when applicable.
	Price int64

	Time time.Time
}
