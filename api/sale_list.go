// Copyright (c) 2026 BVK Chaitanya

package api

import "github.com/bvk/flipbot/gobs"

const SaleListPath = "/flipbot/sale/list"

type SaleListRequest struct {
}

type SaleListResponse struct {
	Sales []*gobs.ScheduledSaleState
}
