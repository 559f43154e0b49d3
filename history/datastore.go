// Copyright (c) 2026 BVK Chaitanya

// Package history persists observed price points in the key/value database.
// The scanner records the asks and sales it sees; the backtest loader reads
// consecutive days back into one chronological series.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"time"

	"github.com/bvk/flipbot/gobs"
	"github.com/bvk/flipbot/kvutil"
	"github.com/bvk/flipbot/marketplace"
	"github.com/bvkgo/kv"
)

const Keyspace = "/history/"

const dayFormat = "2006-01-02"

type Datastore struct {
	db kv.Database
}

func NewDatastore(db kv.Database) *Datastore {
	return &Datastore{db: db}
}

func itemDayKey(item marketplace.ItemID, day string) string {
	return path.Join(Keyspace, string(item), day)
}

// RecordAsks saves the lowest ask per item from one listings snapshot.
func (ds *Datastore) RecordAsks(ctx context.Context, game string, listings []*marketplace.Listing) error {
	lowest := make(map[marketplace.ItemID]*marketplace.Listing)
	for _, l := range listings {
		if best, ok := lowest[l.ItemID]; !ok || l.Price < best.Price {
			lowest[l.ItemID] = l
		}
	}
	for item, l := range lowest {
		point := &gobs.PricePoint{
			Price: l.Price,
			Time:  l.ObservedAt.Time,
			Kind:  "ASK",
		}
		if err := ds.appendPoints(ctx, game, item, []*gobs.PricePoint{point}); err != nil {
			return err
		}
	}
	return nil
}

// RecordSales saves completed sales observed from the sale-history
// endpoint. Re-observed sales are deduplicated.
func (ds *Datastore) RecordSales(ctx context.Context, game string, item marketplace.ItemID, records []*marketplace.SaleRecord) error {
	var points []*gobs.PricePoint
	for _, r := range records {
		points = append(points, &gobs.PricePoint{
			Price: r.Price,
			Time:  r.SoldAt.Time,
			Kind:  "SALE",
		})
	}
	return ds.appendPoints(ctx, game, item, points)
}

// appendPoints merges points into their per-day records inside one
// transaction per day.
func (ds *Datastore) appendPoints(ctx context.Context, game string, item marketplace.ItemID, points []*gobs.PricePoint) error {
	byDay := make(map[string][]*gobs.PricePoint)
	for _, p := range points {
		if p.Time.IsZero() || p.Price <= 0 {
			continue
		}
		day := p.Time.UTC().Format(dayFormat)
		byDay[day] = append(byDay[day], p)
	}
	for day, dayPoints := range byDay {
		key := itemDayKey(item, day)
		merge := func(ctx context.Context, rw kv.ReadWriter) error {
			value, err := kvutil.Get[gobs.PriceHistory](ctx, rw, key)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				value = &gobs.PriceHistory{
					ItemID: string(item),
					Game:   game,
					Day:    day,
				}
			}
			seen := make(map[gobs.PricePoint]bool, len(value.Points))
			for _, p := range value.Points {
				seen[*p] = true
			}
			for _, p := range dayPoints {
				if !seen[*p] {
					value.Points = append(value.Points, p)
					seen[*p] = true
				}
			}
			sort.SliceStable(value.Points, func(i, j int) bool {
				return value.Points[i].Time.Before(value.Points[j].Time)
			})
			return kvutil.Set(ctx, rw, key, value)
		}
		if err := kv.WithReadWriter(ctx, ds.db, merge); err != nil {
			return fmt.Errorf("could not merge %d price points at key %q: %w", len(dayPoints), key, err)
		}
	}
	return nil
}

// LoadSeries returns the item's price points for the trailing number of
// days, in chronological order.
func (ds *Datastore) LoadSeries(ctx context.Context, item marketplace.ItemID, days int, now time.Time) ([]*gobs.PricePoint, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be positive")
	}
	var points []*gobs.PricePoint
	first := now.UTC().AddDate(0, 0, -(days - 1)).Format(dayFormat)
	begin, end := kvutil.PathRange(path.Join(Keyspace, string(item)))
	err := kvutil.AscendDB(ctx, ds.db, begin, end, func(ctx context.Context, r kv.Reader, key string, value *gobs.PriceHistory) error {
		if value.Day < first {
			return nil
		}
		points = append(points, value.Points...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not load price series for item %s: %w", item, err)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return points, nil
}
