// Copyright (c) 2026 BVK Chaitanya

package tradehub

import "time"

const (
	listingsPath    = "/v1/market/listings"
	saleHistoryPath = "/v1/market/sale-history"
	balancePath     = "/v1/account/balance"
	buyPath         = "/v1/market/buy"
	sellPath        = "/v1/market/sell"
	cancelPath      = "/v1/market/cancel"
	eventsPath      = "/v1/events"
)

type listingType struct {
	ListingID  string            `json:"listing_id"`
	ItemID     string            `json:"item_id"`
	Title      string            `json:"title"`
	Game       string            `json:"game"`
	Price      int64             `json:"price"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type listingsResponse struct {
	Game     string         `json:"game"`
	TakenAt  time.Time      `json:"taken_at"`
	Listings []*listingType `json:"listings"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type buyRequest struct {
	ListingID     string `json:"listing_id"`
	Price         int64  `json:"price"`
	ClientOrderID string `json:"client_order_id"`
}

type buyResponse struct {
	ListingID string    `json:"listing_id"`
	ItemID    string    `json:"item_id"`
	Price     int64     `json:"price"`
	Time      time.Time `json:"time"`
}

type sellRequest struct {
	ItemID        string `json:"item_id"`
	Price         int64  `json:"price"`
	ClientOrderID string `json:"client_order_id"`
}

type sellResponse struct {
	ListingID string `json:"listing_id"`
}

type cancelRequest struct {
	ListingID string `json:"listing_id"`
}

type saleType struct {
	ItemID string    `json:"item_id"`
	Price  int64     `json:"price"`
	SoldAt time.Time `json:"sold_at"`
}

type saleHistoryResponse struct {
	Sales []*saleType `json:"sales"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type eventType struct {
	Kind      string    `json:"kind"`
	ListingID string    `json:"listing_id"`
	ItemID    string    `json:"item_id"`
	Price     int64     `json:"price"`
	Time      time.Time `json:"time"`
}
