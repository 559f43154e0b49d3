// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"time"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/job"
	"github.com/bvkgo/kv"
)

func (s *Server) doStatus(ctx context.Context, req *api.StatusRequest) (*api.StatusResponse, error) {
	numJobs := 0
	count := func(ctx context.Context, r kv.Reader, jd *job.JobData) error {
		numJobs++
		return nil
	}
	if err := job.ScanDB(ctx, s.runner, s.db, count); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := &api.StatusResponse{
		Uptime:         time.Since(s.startedAt),
		Balance:        s.balance,
		Games:          append([]string{}, s.state.Games...),
		NumActiveSales: len(s.seller.ActiveSales()),
		NumJobs:        numJobs,
		LastScanAt:     s.lastScanAt,
	}
	return resp, nil
}
