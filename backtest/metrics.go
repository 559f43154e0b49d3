// Copyright (c) 2026 BVK Chaitanya

package backtest

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var d100 = decimal.NewFromInt(100)

func computeMetrics(result *Result, opts *Options) {
	initial := decimal.NewFromInt(result.InitialBalance)
	result.ROI = decimal.NewFromInt(result.FinalEquity - result.InitialBalance).Mul(d100).Div(initial)

	var closed int
	var totalProfit int64
	for _, t := range result.Trades {
		if t.Side == "SELL" {
			closed++
			totalProfit += t.Profit
		}
	}
	if closed > 0 {
		result.AvgProfit = decimal.NewFromInt(totalProfit).Div(decimal.NewFromInt(int64(closed)))
		result.WinRate = decimal.NewFromInt(int64(result.Wins)).Mul(d100).Div(decimal.NewFromInt(int64(closed)))
	}

	result.MaxDrawdown = maxDrawdown(result.EquityCurve)
	result.Sharpe = sharpe(result.EquityCurve, opts.RiskFreeRate)
}

// maxDrawdown returns the largest peak-to-trough decline as a percentage of
// the peak.
func maxDrawdown(curve []*EquityPoint) decimal.Decimal {
	var peak int64
	var worst float64
	for _, e := range curve {
		if e.Value > peak {
			peak = e.Value
		}
		if peak > 0 {
			if dd := float64(peak-e.Value) / float64(peak); dd > worst {
				worst = dd
			}
		}
	}
	return decimal.NewFromFloat(worst * 100).Round(4)
}

// sharpe computes the annualized Sharpe ratio over the per-step equity
// returns. The annualization factor comes from the average step duration of
// the series.
func sharpe(curve []*EquityPoint, riskFree decimal.Decimal) decimal.Decimal {
	if len(curve) < 3 {
		return decimal.Zero
	}
	var returns []float64
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if prev <= 0 {
			continue
		}
		returns = append(returns, float64(curve[i].Value-prev)/float64(prev))
	}
	if len(returns) < 2 {
		return decimal.Zero
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var varsum float64
	for _, r := range returns {
		d := r - mean
		varsum += d * d
	}
	std := math.Sqrt(varsum / float64(len(returns)-1))
	if std == 0 {
		return decimal.Zero
	}

	span := curve[len(curve)-1].Time.Sub(curve[0].Time)
	if span <= 0 {
		return decimal.Zero
	}
	step := span / time.Duration(len(curve)-1)
	stepsPerYear := float64(365*24*time.Hour) / float64(step)

	rf, _ := riskFree.Float64()
	rfPerStep := rf / stepsPerYear

	ratio := (mean - rfPerStep) / std * math.Sqrt(stepsPerYear)
	return decimal.NewFromFloat(ratio).Round(4)
}
