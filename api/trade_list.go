// Copyright (c) 2026 BVK Chaitanya

package api

import "github.com/bvk/flipbot/gobs"

const TradeListPath = "/flipbot/trade/list"

type TradeListRequest struct {
}

type TradeListResponse struct {
	Trades []*gobs.TradeRecord
}
