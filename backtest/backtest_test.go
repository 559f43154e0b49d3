// Copyright (c) 2026 BVK Chaitanya

package backtest

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/bvk/flipbot/gobs"
	"github.com/shopspring/decimal"
)

func series(prices ...int64) []*gobs.PricePoint {
	at := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	var points []*gobs.PricePoint
	for _, p := range prices {
		points = append(points, &gobs.PricePoint{Price: p, Time: at, Kind: "SALE"})
		at = at.Add(time.Hour)
	}
	return points
}

// scripted buys below the buy threshold and sells at or above the sell
// threshold.
type scripted struct {
	buyBelow  int64
	sellAbove int64
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) ShouldBuy(point *gobs.PricePoint, position *Position) bool {
	return point.Price < s.buyBelow
}

func (s *scripted) ShouldSell(point *gobs.PricePoint, position *Position) bool {
	return point.Price >= s.sellAbove
}

func TestRunScriptedStrategy(t *testing.T) {
	strategy := &scripted{buyBelow: 100, sellAbove: 120}
	opts := &Options{InitialBalance: 1000, FeeBps: 1000}

	result, err := Run(strategy, series(100, 90, 120, 80, 130), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Trades) != 4 {
		t.Fatalf("got %d trades, want 4", len(result.Trades))
	}
	if result.FinalBalance != 1055 {
		t.Fatalf("final balance = %d, want 1055", result.FinalBalance)
	}
	if result.Wins != 2 || result.Losses != 0 {
		t.Fatalf("wins/losses = %d/%d, want 2/0", result.Wins, result.Losses)
	}
	if want := decimal.RequireFromString("5.5"); !result.ROI.Equal(want) {
		t.Fatalf("roi = %s, want %s", result.ROI, want)
	}
	if want := decimal.RequireFromString("27.5"); !result.AvgProfit.Equal(want) {
		t.Fatalf("avg profit = %s, want %s", result.AvgProfit, want)
	}
	if !result.WinRate.Equal(d100) {
		t.Fatalf("win rate = %s, want 100", result.WinRate)
	}
}

func TestRunRejectsBuysBeyondBalance(t *testing.T) {
	strategy := &scripted{buyBelow: 500, sellAbove: 10000}
	opts := &Options{InitialBalance: 250, FeeBps: 700}

	result, err := Run(strategy, series(100, 100, 100, 100), opts)
	if err != nil {
		t.Fatal(err)
	}
	// Only two buys fit into the balance.
	if len(result.Trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(result.Trades))
	}
	if result.FinalBalance != 50 {
		t.Fatalf("final balance = %d, want 50", result.FinalBalance)
	}
	for _, e := range result.EquityCurve {
		if e.Value < 0 {
			t.Fatalf("equity went negative: %+v", e)
		}
	}
}

func TestRunMaxDrawdown(t *testing.T) {
	strategy, err := Lookup(BuyAndHoldID)
	if err != nil {
		t.Fatal(err)
	}
	opts := &Options{InitialBalance: 1000, FeeBps: 700}

	result, err := Run(strategy, series(100, 80, 120), opts)
	if err != nil {
		t.Fatal(err)
	}
	// Equity dips from 1000 to 980 at the trough: a 2% drawdown.
	if want := decimal.RequireFromString("2"); !result.MaxDrawdown.Equal(want) {
		t.Fatalf("max drawdown = %s, want %s", result.MaxDrawdown, want)
	}
}

func TestBuyAndHoldBuysFirstAffordablePoint(t *testing.T) {
	strategy, err := Lookup(BuyAndHoldID)
	if err != nil {
		t.Fatal(err)
	}
	opts := &Options{InitialBalance: 1000, FeeBps: 700}

	// The opening price is out of reach; the baseline must still take
	// the first point it can afford.
	result, err := Run(strategy, series(2000, 500, 600), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(result.Trades))
	}
	if got := result.Trades[0]; got.Side != "BUY" || got.Price != 500 {
		t.Fatalf("trade = %s at %d, want BUY at 500", got.Side, got.Price)
	}
	if result.FinalBalance != 500 {
		t.Fatalf("final balance = %d, want 500", result.FinalBalance)
	}
	if result.FinalEquity != 1100 {
		t.Fatalf("final equity = %d, want 1100", result.FinalEquity)
	}
}

func TestRunProcessesOutOfOrderPoints(t *testing.T) {
	strategy := &scripted{buyBelow: 100, sellAbove: 120}
	opts := &Options{InitialBalance: 1000, FeeBps: 1000}

	points := series(100, 90, 120, 80, 130)
	shuffled := []*gobs.PricePoint{points[3], points[0], points[4], points[2], points[1]}

	want, err := Run(strategy, points, opts)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Run(&scripted{buyBelow: 100, sellAbove: 120}, shuffled, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got.FinalBalance != want.FinalBalance || len(got.Trades) != len(want.Trades) {
		t.Fatalf("replay order must follow timestamps: got %d/%d trades, balance %d/%d",
			len(got.Trades), len(want.Trades), got.FinalBalance, want.FinalBalance)
	}
}

func TestRunDeterminism(t *testing.T) {
	prices := make([]int64, 0, 200)
	for i := 0; i < 200; i++ {
		// Deterministic sawtooth around 1000.
		prices = append(prices, 1000+int64((i%17)*13-(i%7)*20))
	}
	points := series(prices...)
	opts := &Options{InitialBalance: 100000, FeeBps: 700}

	var runs [][]byte
	for i := 0; i < 2; i++ {
		strategy, err := Lookup(FlipID)
		if err != nil {
			t.Fatal(err)
		}
		result, err := Run(strategy, points, opts)
		if err != nil {
			t.Fatal(err)
		}
		data, err := json.Marshal(result)
		if err != nil {
			t.Fatal(err)
		}
		runs = append(runs, data)
	}
	if !bytes.Equal(runs[0], runs[1]) {
		t.Fatalf("identical inputs must produce byte-identical results")
	}
}

func TestLookup(t *testing.T) {
	for _, id := range StrategyIDs() {
		strategy, err := Lookup(id)
		if err != nil {
			t.Fatal(err)
		}
		if strategy.Name() != id {
			t.Fatalf("strategy name = %q, want %q", strategy.Name(), id)
		}
	}
	if _, err := Lookup("martingale"); err == nil {
		t.Fatalf("unknown strategy id must be rejected")
	}
}
