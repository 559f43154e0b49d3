// Copyright (c) 2026 BVK Chaitanya

package tradehub

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bvk/flipbot/marketplace"
)

// Client implements the marketplace.Marketplace contract.
var _ marketplace.Marketplace = (*Client)(nil)

func (c *Client) Listings(ctx context.Context, game string, filters *marketplace.ListingFilters) (*marketplace.Snapshot, error) {
	if len(game) == 0 {
		return nil, marketplace.InvalidError("game cannot be empty")
	}
	values := url.Values{}
	values.Set("game", game)
	if filters != nil {
		if filters.MinPrice < 0 || filters.MaxPrice < 0 {
			return nil, marketplace.InvalidError("price bounds cannot be negative")
		}
		if filters.MaxPrice != 0 && filters.MinPrice > filters.MaxPrice {
			return nil, marketplace.InvalidError("min price cannot exceed max price")
		}
		if filters.MinPrice > 0 {
			values.Set("min_price", strconv.FormatInt(filters.MinPrice, 10))
		}
		if filters.MaxPrice > 0 {
			values.Set("max_price", strconv.FormatInt(filters.MaxPrice, 10))
		}
		if len(filters.Category) != 0 {
			values.Set("category", filters.Category)
		}
		if filters.Limit > 0 {
			values.Set("limit", strconv.Itoa(filters.Limit))
		}
	}

	var resp listingsResponse
	if err := c.getJSON(ctx, MarketData, listingsPath, values, &resp); err != nil {
		return nil, fmt.Errorf("could not fetch %q listings: %w", game, err)
	}

	snap := &marketplace.Snapshot{
		Game:    game,
		TakenAt: marketplace.RemoteTime{Time: resp.TakenAt},
	}
	for _, l := range resp.Listings {
		snap.Listings = append(snap.Listings, &marketplace.Listing{
			ListingID:  marketplace.ListingID(l.ListingID),
			ItemID:     marketplace.ItemID(l.ItemID),
			Title:      l.Title,
			Game:       l.Game,
			Price:      l.Price,
			Attributes: l.Attributes,
			ObservedAt: marketplace.RemoteTime{Time: resp.TakenAt},
		})
	}
	return snap, nil
}

func (c *Client) Balance(ctx context.Context) (int64, error) {
	var resp balanceResponse
	if err := c.getJSON(ctx, Account, balancePath, nil, &resp); err != nil {
		return 0, fmt.Errorf("could not fetch account balance: %w", err)
	}
	return resp.Balance, nil
}

func (c *Client) Buy(ctx context.Context, id marketplace.ListingID, price int64) (*marketplace.Confirmation, error) {
	if len(id) == 0 {
		return nil, marketplace.InvalidError("listing id cannot be empty")
	}
	if price <= 0 {
		return nil, marketplace.InvalidError("buy price must be positive")
	}
	var resp buyResponse
	req := &buyRequest{ListingID: string(id), Price: price, ClientOrderID: c.nextClientOrderID()}
	if err := c.postJSON(ctx, Trading, buyPath, req, &resp); err != nil {
		return nil, fmt.Errorf("could not buy listing %q: %w", id, err)
	}
	return &marketplace.Confirmation{
		ListingID: id,
		ItemID:    marketplace.ItemID(resp.ItemID),
		Price:     resp.Price,
		Time:      marketplace.RemoteTime{Time: resp.Time},
	}, nil
}

func (c *Client) Sell(ctx context.Context, item marketplace.ItemID, price int64) (marketplace.ListingID, error) {
	if len(item) == 0 {
		return "", marketplace.InvalidError("item id cannot be empty")
	}
	if price <= 0 {
		return "", marketplace.InvalidError("sell price must be positive")
	}
	var resp sellResponse
	req := &sellRequest{ItemID: string(item), Price: price, ClientOrderID: c.nextClientOrderID()}
	if err := c.postJSON(ctx, Trading, sellPath, req, &resp); err != nil {
		return "", fmt.Errorf("could not list item %q for sale: %w", item, err)
	}
	return marketplace.ListingID(resp.ListingID), nil
}

func (c *Client) Cancel(ctx context.Context, id marketplace.ListingID) error {
	if len(id) == 0 {
		return marketplace.InvalidError("listing id cannot be empty")
	}
	req := &cancelRequest{ListingID: string(id)}
	if err := c.postJSON(ctx, Trading, cancelPath, req, nil); err != nil {
		return fmt.Errorf("could not cancel listing %q: %w", id, err)
	}
	return nil
}

func (c *Client) SaleHistory(ctx context.Context, item marketplace.ItemID, limit int) ([]*marketplace.SaleRecord, error) {
	if len(item) == 0 {
		return nil, marketplace.InvalidError("item id cannot be empty")
	}
	if limit < 0 {
		return nil, marketplace.InvalidError("limit cannot be negative")
	}
	values := url.Values{}
	values.Set("item_id", string(item))
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}

	var resp saleHistoryResponse
	if err := c.getJSON(ctx, MarketData, saleHistoryPath, values, &resp); err != nil {
		return nil, fmt.Errorf("could not fetch sale history for %q: %w", item, err)
	}
	var records []*marketplace.SaleRecord
	for _, s := range resp.Sales {
		records = append(records, &marketplace.SaleRecord{
			ItemID: marketplace.ItemID(s.ItemID),
			Price:  s.Price,
			SoldAt: marketplace.RemoteTime{Time: s.SoldAt},
		})
	}
	return records, nil
}
