// Copyright (c) 2026 BVK Chaitanya

package seller

import (
	"context"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/bvk/flipbot/gobs"
	"github.com/bvk/flipbot/kvutil"
	"github.com/bvkgo/kv"
)

const (
	SalesKeyspace  = "/sales/"
	TradesKeyspace = "/trades/"
)

// Repository persists scheduled sales and finished trades. The daemon plugs
// in the KV-backed implementation; tests use the in-memory one.
type Repository interface {
	SaveSale(ctx context.Context, state *gobs.ScheduledSaleState) error
	LoadSale(ctx context.Context, uid string) (*gobs.ScheduledSaleState, error)
	ListSales(ctx context.Context) ([]*gobs.ScheduledSaleState, error)
	DeleteSale(ctx context.Context, uid string) error

	ArchiveTrade(ctx context.Context, trade *gobs.TradeRecord) error
	ListTrades(ctx context.Context) ([]*gobs.TradeRecord, error)
}

// kvRepository stores sales and trades in the key/value database under the
// /sales/ and /trades/ keyspaces.
type kvRepository struct {
	db kv.Database
}

var _ Repository = (*kvRepository)(nil)

func NewRepository(db kv.Database) Repository {
	return &kvRepository{db: db}
}

func (r *kvRepository) SaveSale(ctx context.Context, state *gobs.ScheduledSaleState) error {
	key := path.Join(SalesKeyspace, state.UID)
	return kvutil.SetDB(ctx, r.db, key, state)
}

func (r *kvRepository) LoadSale(ctx context.Context, uid string) (*gobs.ScheduledSaleState, error) {
	key := path.Join(SalesKeyspace, uid)
	return kvutil.GetDB[gobs.ScheduledSaleState](ctx, r.db, key)
}

func (r *kvRepository) ListSales(ctx context.Context) ([]*gobs.ScheduledSaleState, error) {
	var states []*gobs.ScheduledSaleState
	begin, end := kvutil.PathRange(SalesKeyspace)
	err := kvutil.AscendDB(ctx, r.db, begin, end, func(ctx context.Context, _ kv.Reader, key string, state *gobs.ScheduledSaleState) error {
		states = append(states, state)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (r *kvRepository) DeleteSale(ctx context.Context, uid string) error {
	key := path.Join(SalesKeyspace, uid)
	return kv.WithReadWriter(ctx, r.db, func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Delete(ctx, key)
	})
}

func (r *kvRepository) ArchiveTrade(ctx context.Context, trade *gobs.TradeRecord) error {
	key := path.Join(TradesKeyspace, trade.UID)
	return kvutil.SetDB(ctx, r.db, key, trade)
}

func (r *kvRepository) ListTrades(ctx context.Context) ([]*gobs.TradeRecord, error) {
	var trades []*gobs.TradeRecord
	begin, end := kvutil.PathRange(TradesKeyspace)
	err := kvutil.AscendDB(ctx, r.db, begin, end, func(ctx context.Context, _ kv.Reader, key string, trade *gobs.TradeRecord) error {
		trades = append(trades, trade)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// MemoryRepository keeps everything in process memory. Contents are copied
// on the way in and out, so callers can mutate what they get back.
type MemoryRepository struct {
	mu sync.Mutex

	sales  map[string]gobs.ScheduledSaleState
	trades map[string]gobs.TradeRecord
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sales:  make(map[string]gobs.ScheduledSaleState),
		trades: make(map[string]gobs.TradeRecord),
	}
}

func (r *MemoryRepository) SaveSale(ctx context.Context, state *gobs.ScheduledSaleState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[state.UID] = *state
	return nil
}

func (r *MemoryRepository) LoadSale(ctx context.Context, uid string) (*gobs.ScheduledSaleState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.sales[uid]
	if !ok {
		return nil, os.ErrNotExist
	}
	return &state, nil
}

func (r *MemoryRepository) ListSales(ctx context.Context) ([]*gobs.ScheduledSaleState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []*gobs.ScheduledSaleState
	for _, state := range r.sales {
		state := state
		states = append(states, &state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].UID < states[j].UID
	})
	return states, nil
}

func (r *MemoryRepository) DeleteSale(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sales, uid)
	return nil
}

func (r *MemoryRepository) ArchiveTrade(ctx context.Context, trade *gobs.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades[trade.UID] = *trade
	return nil
}

func (r *MemoryRepository) ListTrades(ctx context.Context) ([]*gobs.TradeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var trades []*gobs.TradeRecord
	for _, trade := range r.trades {
		trade := trade
		trades = append(trades, &trade)
	}
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].UID < trades[j].UID
	})
	return trades, nil
}
