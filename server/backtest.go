// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"time"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/backtest"
	"github.com/bvk/flipbot/marketplace"
)

func (s *Server) doBacktest(ctx context.Context, req *api.BacktestRequest) (*api.BacktestResponse, error) {
	if err := req.Check(); err != nil {
		return nil, fmt.Errorf("invalid backtest request: %w", err)
	}

	strategy, err := backtest.Lookup(req.Strategy)
	if err != nil {
		return nil, err
	}

	points, err := s.history.LoadSeries(ctx, marketplace.ItemID(req.ItemID), req.Days, time.Now())
	if err != nil {
		return nil, fmt.Errorf("could not load price history for item %q: %w", req.ItemID, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no recorded price history for item %q", req.ItemID)
	}

	opts := &backtest.Options{
		InitialBalance: req.InitialBalance,
		FeeBps:         req.FeeBps,
	}
	result, err := backtest.Run(strategy, points, opts)
	if err != nil {
		return nil, err
	}
	return &api.BacktestResponse{Result: result}, nil
}
