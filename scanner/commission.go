// Copyright (c) 2026 BVK Chaitanya

package scanner

import (
	"fmt"
)

// LiquidityBucket classifies an item by how quickly it turns over. The
// marketplace charges lower commission on liquid items.
type LiquidityBucket string

const (
	LowLiquidity    LiquidityBucket = "LOW"
	MediumLiquidity LiquidityBucket = "MEDIUM"
	HighLiquidity   LiquidityBucket = "HIGH"
)

// CommissionTable maps a liquidity bucket to a commission rate in basis
// points of the sale price.
type CommissionTable map[LiquidityBucket]int64

// DefaultCommissions mirrors the marketplace's published fee schedule.
func DefaultCommissions() CommissionTable {
	return CommissionTable{
		HighLiquidity:   500,  // 5%
		MediumLiquidity: 700,  // 7%
		LowLiquidity:    1000, // 10%
	}
}

func (t CommissionTable) Check() error {
	for _, bucket := range []LiquidityBucket{LowLiquidity, MediumLiquidity, HighLiquidity} {
		bps, ok := t[bucket]
		if !ok {
			return fmt.Errorf("commission table is missing bucket %q", bucket)
		}
		if bps < 0 || bps > 10000 {
			return fmt.Errorf("commission %d bps for bucket %q is out of range", bps, bucket)
		}
	}
	return nil
}

// bucketForScore maps a liquidity score to its commission bucket.
func bucketForScore(score int) LiquidityBucket {
	switch {
	case score >= 30:
		return HighLiquidity
	case score >= 10:
		return MediumLiquidity
	}
	return LowLiquidity
}

// Commission returns the marketplace cut of a sale at the given price,
// rounded up to the next minor unit. The marketplace always rounds its fees
// in its own favor.
func (t CommissionTable) Commission(price int64, bucket LiquidityBucket) int64 {
	bps := t[bucket]
	return (price*bps + 9999) / 10000
}

// NetProfit computes sell − buy − commission(sell) − fees in integer minor
// units. The result can be negative.
func NetProfit(buy, sell, fees int64, table CommissionTable, bucket LiquidityBucket) int64 {
	return sell - buy - table.Commission(sell, bucket) - fees
}
