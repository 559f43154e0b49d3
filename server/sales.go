// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"fmt"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/marketplace"
	"github.com/bvk/flipbot/seller"
)

func (s *Server) doSaleSchedule(ctx context.Context, req *api.SaleScheduleRequest) (*api.SaleScheduleResponse, error) {
	if err := req.Check(); err != nil {
		return nil, fmt.Errorf("invalid schedule request: %w", err)
	}

	strategy := seller.Undercut
	if len(req.Strategy) != 0 {
		v, err := seller.ParseStrategy(req.Strategy)
		if err != nil {
			return nil, err
		}
		strategy = v
	}

	state, err := s.seller.Schedule(ctx, marketplace.ItemID(req.ItemID), req.Game, req.BuyPrice, strategy, req.MarginBps)
	if err != nil {
		return nil, err
	}

	resp := &api.SaleScheduleResponse{
		UID:       state.UID,
		State:     state.State,
		ListingID: state.ListingID,
		Price:     state.ListedPrice,
	}
	return resp, nil
}

func (s *Server) doSaleList(ctx context.Context, req *api.SaleListRequest) (*api.SaleListResponse, error) {
	return &api.SaleListResponse{Sales: s.seller.ActiveSales()}, nil
}

func (s *Server) doSaleCancel(ctx context.Context, req *api.SaleCancelRequest) (*api.SaleCancelResponse, error) {
	if err := req.Check(); err != nil {
		return nil, fmt.Errorf("invalid cancel request: %w", err)
	}
	if err := s.seller.CancelSale(ctx, req.UID); err != nil {
		return nil, err
	}
	return &api.SaleCancelResponse{FinalState: seller.StateCancelled}, nil
}

func (s *Server) doTradeList(ctx context.Context, req *api.TradeListRequest) (*api.TradeListResponse, error) {
	trades, err := s.seller.Trades(ctx)
	if err != nil {
		return nil, err
	}
	return &api.TradeListResponse{Trades: trades}, nil
}
