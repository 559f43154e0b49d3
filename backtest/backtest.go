// Copyright (c) 2026 BVK Chaitanya

// Package backtest replays a historical price series through a pluggable
// strategy and reports the performance. The replay is strictly
// single-threaded and never talks to the marketplace: identical inputs
// always produce identical results.
package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/bvk/flipbot/gobs"
	"github.com/shopspring/decimal"
)

// Position aggregates the open buys into a quantity and cost basis. The
// quantity never goes negative.
type Position struct {
	Quantity int64

	// Cost is the total cost basis of the open quantity, minor units.
	Cost int64

	OpenedAt time.Time
}

// AvgCost returns the average cost per open unit, zero for a flat position.
func (p *Position) AvgCost() int64 {
	if p.Quantity == 0 {
		return 0
	}
	return p.Cost / p.Quantity
}

// Strategy decides buys and sells over a price series. The same decision
// shape drives the scanner's buy side and the seller's sell side, so a
// strategy validated here plugs into live trading unchanged.
//
// Strategies may carry internal state (trailing windows etc.) and are
// therefore single-use: construct a fresh one per Run.
type Strategy interface {
	Name() string

	ShouldBuy(point *gobs.PricePoint, position *Position) bool

	ShouldSell(point *gobs.PricePoint, position *Position) bool
}

// Trade is one executed buy or sell event.
type Trade struct {
	Side string // "BUY" or "SELL"

	Price int64

	Fees int64

	// Profit is the realized profit for SELL trades, zero for buys.
	Profit int64

	Time time.Time
}

// EquityPoint is one sample of the simulated account value: balance plus
// open position marked at the current price.
type EquityPoint struct {
	Time time.Time

	Value int64
}

type Options struct {
	// InitialBalance is the starting cash in minor units.
	InitialBalance int64

	// FeeBps is the commission charged on every sell, in basis points,
	// rounded up.
	FeeBps int64

	// RiskFreeRate is the annual risk-free rate used by the Sharpe
	// ratio, as a fraction (0.04 means 4%).
	RiskFreeRate decimal.Decimal
}

func (v *Options) setDefaults() {
	if v.FeeBps == 0 {
		v.FeeBps = 700
	}
}

func (v *Options) Check() error {
	if v.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be positive")
	}
	if v.FeeBps < 0 || v.FeeBps > 10000 {
		return fmt.Errorf("fee %d bps is out of range", v.FeeBps)
	}
	if v.RiskFreeRate.IsNegative() {
		return fmt.Errorf("risk-free rate cannot be negative")
	}
	return nil
}

// Result is the outcome of one backtest run.
type Result struct {
	Strategy string

	InitialBalance int64
	FinalBalance   int64

	// FinalEquity is the final balance plus the open position marked at
	// the last price.
	FinalEquity int64

	Trades []*Trade

	EquityCurve []*EquityPoint

	Wins   int
	Losses int

	// ROI is the total return on the initial balance, in percent.
	ROI decimal.Decimal

	// AvgProfit is the average realized profit per closed trade, minor
	// units.
	AvgProfit decimal.Decimal

	// WinRate is the share of closed trades with positive profit, in
	// percent.
	WinRate decimal.Decimal

	// MaxDrawdown is the largest peak-to-trough equity decline, in
	// percent of the peak.
	MaxDrawdown decimal.Decimal

	// Sharpe is the annualized Sharpe ratio of the equity returns.
	Sharpe decimal.Decimal
}

// Run replays the price series through the strategy. Points are processed
// in timestamp order; a buy that exceeds the available balance is rejected
// and a sell without an open position is never asked for.
func Run(strategy Strategy, points []*gobs.PricePoint, opts *Options) (*Result, error) {
	if strategy == nil {
		return nil, fmt.Errorf("strategy cannot be nil")
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("price series cannot be empty")
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	series := make([]*gobs.PricePoint, len(points))
	copy(series, points)
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Time.Before(series[j].Time)
	})

	result := &Result{
		Strategy:       strategy.Name(),
		InitialBalance: opts.InitialBalance,
	}
	balance := opts.InitialBalance
	position := new(Position)

	for _, p := range series {
		if p.Price <= 0 {
			continue
		}
		if strategy.ShouldBuy(p, position) && p.Price <= balance {
			balance -= p.Price
			if position.Quantity == 0 {
				position.OpenedAt = p.Time
			}
			position.Quantity++
			position.Cost += p.Price
			result.Trades = append(result.Trades, &Trade{
				Side:  "BUY",
				Price: p.Price,
				Time:  p.Time,
			})
		}
		if position.Quantity > 0 && strategy.ShouldSell(p, position) {
			fee := (p.Price*opts.FeeBps + 9999) / 10000
			avgCost := position.AvgCost()
			profit := p.Price - fee - avgCost
			balance += p.Price - fee
			position.Quantity--
			position.Cost -= avgCost
			if position.Quantity == 0 {
				position.Cost = 0
				position.OpenedAt = time.Time{}
			}
			result.Trades = append(result.Trades, &Trade{
				Side:   "SELL",
				Price:  p.Price,
				Fees:   fee,
				Profit: profit,
				Time:   p.Time,
			})
			if profit > 0 {
				result.Wins++
			} else {
				result.Losses++
			}
		}
		result.EquityCurve = append(result.EquityCurve, &EquityPoint{
			Time:  p.Time,
			Value: balance + position.Quantity*p.Price,
		})
	}

	result.FinalBalance = balance
	result.FinalEquity = result.EquityCurve[len(result.EquityCurve)-1].Value
	computeMetrics(result, opts)
	return result, nil
}
