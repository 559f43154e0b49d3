// Copyright (c) 2026 BVK Chaitanya

// Package api defines the POST request/response types served by the daemon.
// Every endpoint takes and returns JSON. Paths are relative to the api
// handler mount point.
package api

import (
	"fmt"

	"github.com/bvk/flipbot/scanner"
)

const ScanPath = "/flipbot/scan"

type ScanRequest struct {
	// Games to scan. Empty means the daemon's configured game list.
	Games []string

	// Tiers to scan, 1 through 5. Empty means all tiers.
	Tiers []int
}

type ScanResponse struct {
	Opportunities []*scanner.Opportunity
}

func (r *ScanRequest) Check() error {
	for _, tier := range r.Tiers {
		if tier < 1 || tier > 5 {
			return fmt.Errorf("tier %d is out of range [1..5]", tier)
		}
	}
	return nil
}
