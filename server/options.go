// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"fmt"
	"time"

	"github.com/bvk/flipbot/marketplace"
)

type Options struct {
	// NoResume disables the automatic resume of persisted sales and
	// background jobs on startup.
	NoResume bool

	// ScanInterval is the delay between automatic scan cycles.
	ScanInterval time.Duration

	// BalanceCheckInterval is the delay between marketplace balance
	// polls for the low-balance alert.
	BalanceCheckInterval time.Duration

	// RunDeadline bounds one scan cycle.
	RunDeadline time.Duration

	// product overrides the marketplace client, for tests.
	product marketplace.Marketplace
}

func (v *Options) setDefaults() {
	if v.ScanInterval == 0 {
		v.ScanInterval = 10 * time.Minute
	}
	if v.BalanceCheckInterval == 0 {
		v.BalanceCheckInterval = 5 * time.Minute
	}
	if v.RunDeadline == 0 {
		v.RunDeadline = 5 * time.Minute
	}
}

func (v *Options) Check() error {
	if v.ScanInterval < time.Second {
		return fmt.Errorf("scan interval is too small")
	}
	if v.BalanceCheckInterval < time.Second {
		return fmt.Errorf("balance check interval is too small")
	}
	return nil
}
