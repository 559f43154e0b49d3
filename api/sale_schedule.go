// Copyright (c) 2026 BVK Chaitanya

package api

import (
	"fmt"

	"github.com/bvk/flipbot/seller"
)

const SaleSchedulePath = "/flipbot/sale/schedule"

type SaleScheduleRequest struct {
	ItemID string
	Game   string

	// BuyPrice is the purchase price in minor units.
	BuyPrice int64

	// Strategy is UNDERCUT, MATCH, FIXED-MARGIN or DYNAMIC. Empty picks
	// UNDERCUT.
	Strategy string

	// MarginBps is the target profit margin in basis points. Zero picks
	// the daemon's default.
	MarginBps int64
}

type SaleScheduleResponse struct {
	UID string

	State string

	// ListingID and Price are set when the initial listing attempt
	// succeeded within the request.
	ListingID string
	Price     int64
}

func (r *SaleScheduleRequest) Check() error {
	if len(r.ItemID) == 0 {
		return fmt.Errorf("item id cannot be empty")
	}
	if len(r.Game) == 0 {
		return fmt.Errorf("game cannot be empty")
	}
	if r.BuyPrice <= 0 {
		return fmt.Errorf("buy price must be positive")
	}
	if len(r.Strategy) != 0 {
		if _, err := seller.ParseStrategy(r.Strategy); err != nil {
			return err
		}
	}
	if r.MarginBps < 0 {
		return fmt.Errorf("margin cannot be negative")
	}
	return nil
}
