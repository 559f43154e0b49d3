// Copyright (c) 2026 BVK Chaitanya

package scanner

import (
	"math"
	"slices"

	"github.com/bvk/flipbot/marketplace"
)

// SaleHistoryStat summarizes an item's trailing sale prices. Rebuilt on
// every scan cycle from the marketplace's sale-history endpoint.
type SaleHistoryStat struct {
	Count int

	Mean   float64
	Median float64
	StdDev float64

	// FilteredMean is the mean after dropping outlier sale points whose
	// z-score exceeds the configured sigma bound. Wash trades and fat
	// fingers show up as outliers.
	FilteredMean float64

	// Outliers is the number of points dropped by the z-score test.
	Outliers int
}

// BuildStat computes the summary over the given sale records. Records with
// non-positive prices are ignored. A sigma of zero disables outlier
// filtering.
func BuildStat(records []*marketplace.SaleRecord, sigma float64) *SaleHistoryStat {
	var prices []float64
	for _, r := range records {
		if r.Price > 0 {
			prices = append(prices, float64(r.Price))
		}
	}
	stat := &SaleHistoryStat{Count: len(prices)}
	if len(prices) == 0 {
		return stat
	}

	stat.Mean = mean(prices)
	stat.Median = median(prices)
	stat.StdDev = stddev(prices, stat.Mean)

	stat.FilteredMean = stat.Mean
	if sigma > 0 && stat.StdDev > 0 {
		var kept []float64
		for _, p := range prices {
			if math.Abs(p-stat.Mean)/stat.StdDev <= sigma {
				kept = append(kept, p)
			}
		}
		stat.Outliers = len(prices) - len(kept)
		if len(kept) > 0 {
			stat.FilteredMean = mean(kept)
		}
	}
	return stat
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func median(vs []float64) float64 {
	sorted := slices.Clone(vs)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stddev(vs []float64, mean float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vs)))
}
