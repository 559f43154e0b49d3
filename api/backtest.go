// Copyright (c) 2026 BVK Chaitanya

package api

import (
	"fmt"
	"slices"

	"github.com/bvk/flipbot/backtest"
)

const BacktestPath = "/flipbot/backtest"

type BacktestRequest struct {
	ItemID string

	// Strategy is one of the registered strategy ids.
	Strategy string

	// Days is how many trailing days of recorded price history to replay.
	Days int

	// InitialBalance is the simulated starting balance in minor units.
	InitialBalance int64

	// FeeBps is the simulated commission rate in basis points. Zero
	// picks the default.
	FeeBps int64
}

type BacktestResponse struct {
	Result *backtest.Result
}

func (r *BacktestRequest) Check() error {
	if len(r.ItemID) == 0 {
		return fmt.Errorf("item id cannot be empty")
	}
	if !slices.Contains(backtest.StrategyIDs(), r.Strategy) {
		return fmt.Errorf("unknown strategy %q", r.Strategy)
	}
	if r.Days <= 0 {
		return fmt.Errorf("days must be positive")
	}
	if r.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be positive")
	}
	if r.FeeBps < 0 {
		return fmt.Errorf("fee cannot be negative")
	}
	return nil
}
