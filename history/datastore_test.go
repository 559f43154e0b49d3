// Copyright (c) 2026 BVK Chaitanya

package history

import (
	"context"
	"testing"
	"time"

	"github.com/bvk/flipbot/marketplace"
	"github.com/bvkgo/kv/kvmemdb"
)

func TestRecordSalesDeduplicates(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore(kvmemdb.New())

	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	records := []*marketplace.SaleRecord{
		{ItemID: "rifle", Price: 640, SoldAt: marketplace.RemoteTime{Time: at}},
		{ItemID: "rifle", Price: 650, SoldAt: marketplace.RemoteTime{Time: at.Add(time.Hour)}},
	}
	if err := ds.RecordSales(ctx, "rust", "rifle", records); err != nil {
		t.Fatal(err)
	}
	// Re-observing the same trailing window must not duplicate points.
	if err := ds.RecordSales(ctx, "rust", "rifle", records); err != nil {
		t.Fatal(err)
	}

	points, err := ds.LoadSeries(ctx, "rifle", 7, at)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Price != 640 || points[1].Price != 650 {
		t.Fatalf("points out of order: %+v", points)
	}
}

func TestRecordAsksKeepsLowest(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore(kvmemdb.New())

	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	listings := []*marketplace.Listing{
		{ListingID: "l-1", ItemID: "rifle", Price: 650, ObservedAt: marketplace.RemoteTime{Time: at}},
		{ListingID: "l-2", ItemID: "rifle", Price: 500, ObservedAt: marketplace.RemoteTime{Time: at}},
		{ListingID: "l-3", ItemID: "mask", Price: 300, ObservedAt: marketplace.RemoteTime{Time: at}},
	}
	if err := ds.RecordAsks(ctx, "rust", listings); err != nil {
		t.Fatal(err)
	}

	points, err := ds.LoadSeries(ctx, "rifle", 1, at)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].Price != 500 || points[0].Kind != "ASK" {
		t.Fatalf("point = %+v, want the lowest ask", points[0])
	}
}

func TestLoadSeriesWindow(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore(kvmemdb.New())

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	var records []*marketplace.SaleRecord
	for i := 0; i < 10; i++ {
		records = append(records, &marketplace.SaleRecord{
			ItemID: "rifle",
			Price:  600 + int64(i),
			SoldAt: marketplace.RemoteTime{Time: now.AddDate(0, 0, -i)},
		})
	}
	if err := ds.RecordSales(ctx, "rust", "rifle", records); err != nil {
		t.Fatal(err)
	}

	points, err := ds.LoadSeries(ctx, "rifle", 3, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Before(points[i-1].Time) {
			t.Fatalf("points are not chronological: %+v", points)
		}
	}
}
