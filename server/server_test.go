// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/gobs"
	"github.com/bvk/flipbot/kvutil"
	"github.com/bvk/flipbot/marketplace"
	"github.com/bvkgo/kv/kvmemdb"
)

type fakeMarketplace struct {
	mu sync.Mutex

	listings map[string][]*marketplace.Listing
	history  map[marketplace.ItemID][]*marketplace.SaleRecord

	balance int64

	nextID int
	ours   map[marketplace.ListingID]int64
}

func (f *fakeMarketplace) Close() error { return nil }

func (f *fakeMarketplace) Listings(ctx context.Context, game string, filters *marketplace.ListingFilters) (*marketplace.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := &marketplace.Snapshot{
		Game:    game,
		TakenAt: marketplace.RemoteTime{Time: time.Now()},
	}
	for _, l := range f.listings[game] {
		if filters != nil {
			if filters.MinPrice != 0 && l.Price < filters.MinPrice {
				continue
			}
			if filters.MaxPrice != 0 && l.Price > filters.MaxPrice {
				continue
			}
		}
		snap.Listings = append(snap.Listings, l)
	}
	return snap, nil
}

func (f *fakeMarketplace) Balance(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

func (f *fakeMarketplace) Buy(ctx context.Context, id marketplace.ListingID, price int64) (*marketplace.Confirmation, error) {
	return nil, marketplace.InvalidError("buy is not supported by this fake")
}

func (f *fakeMarketplace) Sell(ctx context.Context, item marketplace.ItemID, price int64) (marketplace.ListingID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := marketplace.ListingID("our-" + string(rune('a'+f.nextID)))
	if f.ours == nil {
		f.ours = make(map[marketplace.ListingID]int64)
	}
	f.ours[id] = price
	return id, nil
}

func (f *fakeMarketplace) Cancel(ctx context.Context, id marketplace.ListingID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ours[id]; !ok {
		return marketplace.InvalidError("no such listing")
	}
	delete(f.ours, id)
	return nil
}

func (f *fakeMarketplace) SaleHistory(ctx context.Context, item marketplace.ItemID, limit int) ([]*marketplace.SaleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := f.history[item]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func newTestMarketplace() *fakeMarketplace {
	at := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	var sales []*marketplace.SaleRecord
	for i := 0; i < 20; i++ {
		sales = append(sales, &marketplace.SaleRecord{
			ItemID: "item-rifle",
			Price:  640,
			SoldAt: marketplace.RemoteTime{Time: at.Add(-time.Duration(i) * time.Hour)},
		})
	}
	return &fakeMarketplace{
		balance: 5000,
		listings: map[string][]*marketplace.Listing{
			"rust": {
				{ListingID: "l-1", ItemID: "item-rifle", Title: "rifle", Game: "rust", Price: 500, ObservedAt: marketplace.RemoteTime{Time: time.Now()}},
				{ListingID: "l-2", ItemID: "item-rifle", Title: "rifle", Game: "rust", Price: 650, ObservedAt: marketplace.RemoteTime{Time: time.Now()}},
			},
		},
		history: map[marketplace.ItemID][]*marketplace.SaleRecord{
			"item-rifle": sales,
		},
	}
}

func newTestServer(t *testing.T, product marketplace.Marketplace) *Server {
	t.Helper()

	ctx := context.Background()
	db := kvmemdb.New()
	if err := kvutil.SetDB(ctx, db, ServerStateKey, &gobs.ServerState{Games: []string{"rust"}}); err != nil {
		t.Fatal(err)
	}

	opts := &Options{
		NoResume: true,
		product:  product,
	}
	s, err := New(ctx, nil, db, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	})
	return s
}

func TestServerScan(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, newTestMarketplace())

	resp, err := s.doScan(ctx, &api.ScanRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Opportunities) != 1 {
		t.Fatalf("wanted one opportunity, got %d", len(resp.Opportunities))
	}
	o := resp.Opportunities[0]
	if o.BuyPrice != 500 || o.SellPrice != 650 {
		t.Fatalf("wanted buy 500 sell 650, got buy %d sell %d", o.BuyPrice, o.SellPrice)
	}
}

func TestServerSaleLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, newTestMarketplace())

	req := &api.SaleScheduleRequest{
		ItemID:   "item-rifle",
		Game:     "rust",
		BuyPrice: 500,
	}
	resp, err := s.doSaleSchedule(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.UID) == 0 {
		t.Fatalf("wanted a sale uid, got none")
	}

	list, err := s.doSaleList(ctx, &api.SaleListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Sales) != 1 {
		t.Fatalf("wanted one active sale, got %d", len(list.Sales))
	}

	cancel, err := s.doSaleCancel(ctx, &api.SaleCancelRequest{UID: resp.UID})
	if err != nil {
		t.Fatal(err)
	}
	if cancel.FinalState != "CANCELLED" {
		t.Fatalf("wanted CANCELLED, got %q", cancel.FinalState)
	}

	trades, err := s.doTradeList(ctx, &api.TradeListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(trades.Trades) != 1 {
		t.Fatalf("wanted one archived trade, got %d", len(trades.Trades))
	}
}

func TestServerStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, newTestMarketplace())

	resp, err := s.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Games) != 1 || resp.Games[0] != "rust" {
		t.Fatalf("wanted configured game rust, got %v", resp.Games)
	}
}

func TestServerHandlerMap(t *testing.T) {
	s := newTestServer(t, newTestMarketplace())

	handler, ok := s.HandlerMap()[api.ScanPath]
	if !ok {
		t.Fatalf("no handler for %q", api.ScanPath)
	}

	data, err := json.Marshal(&api.ScanRequest{})
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest("POST", api.ScanPath, bytes.NewReader(data))
	r.Header.Set("content-type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 200 {
		t.Fatalf("wanted http status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := new(api.ScanResponse)
	if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Opportunities) != 1 {
		t.Fatalf("wanted one opportunity, got %d", len(resp.Opportunities))
	}
}
