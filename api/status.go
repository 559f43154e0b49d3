// Copyright (c) 2026 BVK Chaitanya

package api

import "time"

const StatusPath = "/flipbot/status"

type StatusRequest struct {
}

type StatusResponse struct {
	// Uptime is how long the daemon has been running.
	Uptime time.Duration

	// Balance is the last observed marketplace balance in minor units.
	Balance int64

	// Games are the configured game identifiers.
	Games []string

	NumActiveSales int
	NumJobs        int

	// LastScanAt is the completion time of the most recent scan cycle,
	// zero if none has completed yet.
	LastScanAt time.Time
}
