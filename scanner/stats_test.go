// Copyright (c) 2026 BVK Chaitanya

package scanner

import (
	"math"
	"testing"
	"time"

	"github.com/bvk/flipbot/marketplace"
)

func saleRecords(prices ...int64) []*marketplace.SaleRecord {
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var records []*marketplace.SaleRecord
	for _, p := range prices {
		records = append(records, &marketplace.SaleRecord{
			ItemID: "item-1",
			Price:  p,
			SoldAt: marketplace.RemoteTime{Time: at},
		})
		at = at.Add(-time.Hour)
	}
	return records
}

func TestBuildStatBasics(t *testing.T) {
	stat := BuildStat(saleRecords(100, 200, 300, 400), 0)
	if stat.Count != 4 {
		t.Fatalf("count = %d, want 4", stat.Count)
	}
	if stat.Mean != 250 {
		t.Fatalf("mean = %f, want 250", stat.Mean)
	}
	if stat.Median != 250 {
		t.Fatalf("median = %f, want 250", stat.Median)
	}
	want := math.Sqrt((150*150 + 50*50 + 50*50 + 150*150) / 4.0)
	if math.Abs(stat.StdDev-want) > 1e-9 {
		t.Fatalf("stddev = %f, want %f", stat.StdDev, want)
	}
	if stat.FilteredMean != stat.Mean {
		t.Fatalf("sigma 0 must disable filtering; got %f", stat.FilteredMean)
	}
}

func TestBuildStatOddMedian(t *testing.T) {
	stat := BuildStat(saleRecords(500, 100, 300), 0)
	if stat.Median != 300 {
		t.Fatalf("median = %f, want 300", stat.Median)
	}
}

func TestBuildStatOutlierRejection(t *testing.T) {
	prices := make([]int64, 0, 20)
	for i := 0; i < 19; i++ {
		prices = append(prices, 100)
	}
	prices = append(prices, 10000) // wash trade

	stat := BuildStat(saleRecords(prices...), 2)
	if stat.Count != 20 {
		t.Fatalf("count = %d, want 20", stat.Count)
	}
	if stat.Outliers != 1 {
		t.Fatalf("outliers = %d, want 1", stat.Outliers)
	}
	if stat.FilteredMean != 100 {
		t.Fatalf("filtered mean = %f, want 100", stat.FilteredMean)
	}
	if stat.Mean == stat.FilteredMean {
		t.Fatalf("raw mean %f should differ from filtered mean", stat.Mean)
	}
}

func TestBuildStatIgnoresBadPrices(t *testing.T) {
	records := saleRecords(100, 0, -5, 200)
	stat := BuildStat(records, 2)
	if stat.Count != 2 {
		t.Fatalf("count = %d, want 2", stat.Count)
	}
	if stat.Mean != 150 {
		t.Fatalf("mean = %f, want 150", stat.Mean)
	}
}

func TestBuildStatEmpty(t *testing.T) {
	stat := BuildStat(nil, 2)
	if stat.Count != 0 || stat.Mean != 0 || stat.FilteredMean != 0 {
		t.Fatalf("empty stat is not zero: %+v", stat)
	}
}
