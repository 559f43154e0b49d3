// Copyright (c) 2026 BVK Chaitanya

// Package metrics holds the prometheus collectors shared by the daemon's
// subsystems. Collectors are registered on the default registry; the run
// command mounts promhttp on the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScanCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flipbot_scan_cycles_total",
		Help: "Number of completed scan cycles",
	})

	ScanFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flipbot_scan_failures_total",
		Help: "Number of scan cycles that returned an error",
	})

	Opportunities = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flipbot_opportunities_total",
		Help: "Number of arbitrage opportunities found, by game",
	}, []string{"game"})

	SaleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flipbot_sale_transitions_total",
		Help: "Number of scheduled-sale state transitions, by new state",
	}, []string{"state"})

	TradesClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flipbot_trades_closed_total",
		Help: "Number of archived trades, by outcome",
	}, []string{"outcome"})

	AccountBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flipbot_account_balance",
		Help: "Last observed marketplace balance in minor units",
	})
)

// RegisterCacheStats exports hit/miss/eviction counters read from the given
// snapshot function.
func RegisterCacheStats(stats func() (hits, misses, evictions int64)) {
	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "flipbot_cache_hits_total",
		Help: "Number of cache hits",
	}, func() float64 {
		h, _, _ := stats()
		return float64(h)
	})
	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "flipbot_cache_misses_total",
		Help: "Number of cache misses",
	}, func() float64 {
		_, m, _ := stats()
		return float64(m)
	})
	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "flipbot_cache_evictions_total",
		Help: "Number of cache evictions",
	}, func() float64 {
		_, _, e := stats()
		return float64(e)
	})
}
