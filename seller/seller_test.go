// Copyright (c) 2026 BVK Chaitanya

package seller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bvk/flipbot/marketplace"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMarketplace struct {
	mu sync.Mutex

	clock *fakeClock

	// competitors are other sellers' asks, keyed by item.
	competitors map[marketplace.ItemID][]int64

	// ours are our active listings.
	ours map[marketplace.ListingID]*marketplace.Listing

	nextID int

	sellErr error

	sells   int
	cancels int
}

func newFakeMarketplace(clock *fakeClock) *fakeMarketplace {
	return &fakeMarketplace{
		clock:       clock,
		competitors: make(map[marketplace.ItemID][]int64),
		ours:        make(map[marketplace.ListingID]*marketplace.Listing),
	}
}

func (f *fakeMarketplace) Close() error { return nil }

func (f *fakeMarketplace) setCompetitors(item marketplace.ItemID, prices ...int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.competitors[item] = prices
}

func (f *fakeMarketplace) Listings(ctx context.Context, game string, filters *marketplace.ListingFilters) (*marketplace.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := &marketplace.Snapshot{
		Game:    game,
		TakenAt: marketplace.RemoteTime{Time: f.clock.Now()},
	}
	for item, prices := range f.competitors {
		for i, p := range prices {
			snap.Listings = append(snap.Listings, &marketplace.Listing{
				ListingID: marketplace.ListingID(fmt.Sprintf("comp-%s-%d", item, i)),
				ItemID:    item,
				Game:      game,
				Price:     p,
			})
		}
	}
	for _, l := range f.ours {
		snap.Listings = append(snap.Listings, l)
	}
	return snap, nil
}

func (f *fakeMarketplace) Balance(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeMarketplace) Buy(ctx context.Context, id marketplace.ListingID, price int64) (*marketplace.Confirmation, error) {
	return nil, marketplace.InvalidError("buy is not supported by this fake")
}

func (f *fakeMarketplace) Sell(ctx context.Context, item marketplace.ItemID, price int64) (marketplace.ListingID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sells++
	if f.sellErr != nil {
		return "", f.sellErr
	}
	f.nextID++
	id := marketplace.ListingID(fmt.Sprintf("our-%d", f.nextID))
	f.ours[id] = &marketplace.Listing{
		ListingID: id,
		ItemID:    item,
		Price:     price,
	}
	return id, nil
}

func (f *fakeMarketplace) Cancel(ctx context.Context, id marketplace.ListingID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	if _, ok := f.ours[id]; !ok {
		return marketplace.InvalidError("listing is not active")
	}
	delete(f.ours, id)
	return nil
}

func (f *fakeMarketplace) SaleHistory(ctx context.Context, item marketplace.ItemID, limit int) ([]*marketplace.SaleRecord, error) {
	return nil, nil
}

func (f *fakeMarketplace) listedPrice(id string) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.ours[marketplace.ListingID(id)]
	if !ok {
		return 0, false
	}
	return l.Price, true
}

func newTestSeller(t *testing.T, product marketplace.Marketplace, clock *fakeClock, opts *Options) (*Seller, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	if opts == nil {
		opts = new(Options)
	}
	if opts.Clock == nil {
		opts.Clock = clock.Now
	}
	s, err := New(product, repo, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, repo
}

func TestScheduleListsImmediately(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650, 700)
	s, repo := newTestSeller(t, product, clock, nil)

	ctx := context.Background()
	state, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}
	if state.State != StateListed {
		t.Fatalf("state = %s, want %s", state.State, StateListed)
	}
	if state.ListedPrice != 649 {
		t.Fatalf("listed price = %d, want 649", state.ListedPrice)
	}
	if price, ok := product.listedPrice(state.ListingID); !ok || price != 649 {
		t.Fatalf("marketplace listing %q at %d, want 649", state.ListingID, price)
	}

	// The transition was persisted.
	saved, err := repo.LoadSale(ctx, state.UID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.State != StateListed || saved.ListedPrice != 649 {
		t.Fatalf("persisted state = %s at %d, want %s at 649", saved.State, saved.ListedPrice, StateListed)
	}
}

func TestScheduleClampsToMinMargin(t *testing.T) {
	// Bought at 1000 with the best competitor at 1001: raw undercut is
	// 1000, clamped up to the 2% floor of 1020.
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 1001)
	s, _ := newTestSeller(t, product, clock, nil)

	state, err := s.Schedule(context.Background(), "rifle", "rust", 1000, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}
	if state.ListedPrice != 1020 {
		t.Fatalf("listed price = %d, want 1020", state.ListedPrice)
	}
}

func TestRepriceCancelCreate(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650)
	s, _ := newTestSeller(t, product, clock, nil)

	ctx := context.Background()
	state, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}
	oldListing := state.ListingID

	// The competitor drops to 600; the next tick must cancel and
	// re-list at 599.
	product.setCompetitors("rifle", 600)
	s.runTick(ctx)

	sales := s.ActiveSales()
	if len(sales) != 1 {
		t.Fatalf("got %d active sales, want 1", len(sales))
	}
	state = sales[0]
	if state.ListedPrice != 599 {
		t.Fatalf("listed price = %d, want 599", state.ListedPrice)
	}
	if state.ListingID == oldListing {
		t.Fatalf("re-price must create a new listing")
	}
	if state.Relists != 1 {
		t.Fatalf("relists = %d, want 1", state.Relists)
	}
	if product.cancels != 1 {
		t.Fatalf("cancels = %d, want 1", product.cancels)
	}
	if _, ok := product.listedPrice(oldListing); ok {
		t.Fatalf("old listing %q must be gone", oldListing)
	}
}

func TestRepriceSkipsSmallDelta(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650)
	s, _ := newTestSeller(t, product, clock, nil)

	ctx := context.Background()
	if _, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0); err != nil {
		t.Fatal(err)
	}

	// One minor unit of movement is within the minimal delta.
	product.setCompetitors("rifle", 651)
	s.runTick(ctx)

	if product.cancels != 0 {
		t.Fatalf("cancels = %d, want 0", product.cancels)
	}
	if state := s.ActiveSales()[0]; state.ListedPrice != 649 {
		t.Fatalf("listed price = %d, want 649", state.ListedPrice)
	}
}

func TestStopLossAfterDeadline(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650)
	s, _ := newTestSeller(t, product, clock, nil)

	ctx := context.Background()
	state, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}

	// One tick before the deadline nothing happens.
	clock.Advance(48*time.Hour - time.Minute)
	s.runTick(ctx)
	if got := s.ActiveSales()[0]; got.State != StateListed {
		t.Fatalf("state = %s before the deadline, want %s", got.State, StateListed)
	}

	clock.Advance(2 * time.Minute)
	s.runTick(ctx)

	got := s.ActiveSales()[0]
	if got.State != StateStopLoss {
		t.Fatalf("state = %s, want %s", got.State, StateStopLoss)
	}
	// 500 × 0.95 = 475 forces liquidation below cost.
	if got.ListedPrice != 475 {
		t.Fatalf("stop-loss price = %d, want 475", got.ListedPrice)
	}
	if got.ListingID == state.ListingID {
		t.Fatalf("stop-loss must re-list under a new listing")
	}

	// The liquidation listing stays put on later ticks.
	clock.Advance(time.Hour)
	s.runTick(ctx)
	if again := s.ActiveSales()[0]; again.ListingID != got.ListingID {
		t.Fatalf("stop-loss listing must not be re-priced")
	}
}

func TestPartialFillResetsDeadline(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650)
	s, _ := newTestSeller(t, product, clock, &Options{ResetDeadlineOnPartialFill: true, Clock: clock.Now})

	ctx := context.Background()
	state, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(40 * time.Hour)
	ev := &marketplace.Event{
		Kind:      marketplace.EventPartialFill,
		ListingID: marketplace.ListingID(state.ListingID),
		Time:      clock.Now(),
	}
	if err := s.HandleEvent(ctx, ev); err != nil {
		t.Fatal(err)
	}

	// 50 hours after creation, but only 10 after the partial fill.
	clock.Advance(10 * time.Hour)
	s.runTick(ctx)
	if got := s.ActiveSales()[0]; got.State != StateListed {
		t.Fatalf("state = %s, want %s", got.State, StateListed)
	}

	clock.Advance(39 * time.Hour)
	s.runTick(ctx)
	if got := s.ActiveSales()[0]; got.State != StateStopLoss {
		t.Fatalf("state = %s, want %s", got.State, StateStopLoss)
	}
}

func TestSoldViaConfirmation(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650)
	s, repo := newTestSeller(t, product, clock, nil)

	ctx := context.Background()
	state, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}

	ev := &marketplace.Event{
		Kind:      marketplace.EventSold,
		ListingID: marketplace.ListingID(state.ListingID),
		ItemID:    "rifle",
		Price:     649,
		Time:      clock.Now(),
	}
	if err := s.HandleEvent(ctx, ev); err != nil {
		t.Fatal(err)
	}
	if sales := s.ActiveSales(); len(sales) != 0 {
		t.Fatalf("got %d active sales, want 0", len(sales))
	}

	trades, err := repo.ListTrades(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if trades[0].Outcome != StateSold || trades[0].SellPrice != 649 {
		t.Fatalf("trade outcome = %s at %d, want %s at 649", trades[0].Outcome, trades[0].SellPrice, StateSold)
	}

	// A duplicate confirmation is a no-op.
	if err := s.HandleEvent(ctx, ev); err != nil {
		t.Fatal(err)
	}
	if trades, _ := repo.ListTrades(ctx); len(trades) != 1 {
		t.Fatalf("duplicate confirmation must not add a trade")
	}
}

func TestFailureCapCancels(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650)
	s, repo := newTestSeller(t, product, clock, &Options{MaxFailures: 2, Clock: clock.Now})

	ctx := context.Background()
	product.sellErr = marketplace.ServerError(500)
	state, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}
	if state.State != StateScheduled {
		t.Fatalf("state = %s, want %s", state.State, StateScheduled)
	}

	s.runTick(ctx)
	if sales := s.ActiveSales(); len(sales) != 1 {
		t.Fatalf("sale must survive the first failed tick")
	}

	s.runTick(ctx)
	if sales := s.ActiveSales(); len(sales) != 0 {
		t.Fatalf("sale must be given up after %d failures", 2)
	}
	trades, err := repo.ListTrades(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 || trades[0].Outcome != StateCancelled {
		t.Fatalf("trades = %+v, want one %s outcome", trades, StateCancelled)
	}
}

func TestResume(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650)
	s, repo := newTestSeller(t, product, clock, nil)

	ctx := context.Background()
	state, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}

	// A fresh seller over the same repository picks the sale back up.
	s2, err := New(product, repo, &Options{Clock: clock.Now})
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if err := s2.Resume(ctx); err != nil {
		t.Fatal(err)
	}
	sales := s2.ActiveSales()
	if len(sales) != 1 {
		t.Fatalf("got %d active sales after resume, want 1", len(sales))
	}
	if sales[0].UID != state.UID || sales[0].State != StateListed {
		t.Fatalf("resumed sale = %+v, want %s in %s", sales[0], state.UID, StateListed)
	}
}

func TestCancelSale(t *testing.T) {
	clock := newFakeClock()
	product := newFakeMarketplace(clock)
	product.setCompetitors("rifle", 650)
	s, repo := newTestSeller(t, product, clock, nil)

	ctx := context.Background()
	state, err := s.Schedule(ctx, "rifle", "rust", 500, Undercut, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CancelSale(ctx, state.UID); err != nil {
		t.Fatal(err)
	}
	if sales := s.ActiveSales(); len(sales) != 0 {
		t.Fatalf("got %d active sales, want 0", len(sales))
	}
	if _, ok := product.listedPrice(state.ListingID); ok {
		t.Fatalf("listing %q must be withdrawn", state.ListingID)
	}
	trades, err := repo.ListTrades(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 || trades[0].Outcome != StateCancelled {
		t.Fatalf("trades = %+v, want one %s outcome", trades, StateCancelled)
	}
}
