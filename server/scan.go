// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"log"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/scanner"
)

// doScan runs an on-demand scan. Games and tiers default to the daemon's
// configured values; failures on individual game/tier pairs are logged and
// skipped so that one bad bracket doesn't hide the rest.
func (s *Server) doScan(ctx context.Context, req *api.ScanRequest) (*api.ScanResponse, error) {
	if err := req.Check(); err != nil {
		return nil, fmt.Errorf("invalid scan request: %w", err)
	}

	games := req.Games
	if len(games) == 0 {
		games = s.configuredGames()
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("no games configured; pass games in the request or set them in the server state")
	}

	tiers := req.Tiers
	if len(tiers) == 0 {
		s.mu.Lock()
		tiers = append([]int{}, s.state.Tiers...)
		s.mu.Unlock()
	}

	if len(tiers) == 0 {
		opportunities, err := s.scanner.ScanAll(ctx, games)
		if err != nil {
			return nil, err
		}
		return &api.ScanResponse{Opportunities: opportunities}, nil
	}

	var opportunities []*scanner.Opportunity
	for _, game := range games {
		for _, tier := range tiers {
			vs, err := s.scanner.Scan(ctx, game, scanner.Tier(tier))
			if err != nil {
				if ctx.Err() != nil {
					return nil, context.Cause(ctx)
				}
				log.Printf("could not scan game %q tier %d (skipped): %v", game, tier, err)
				continue
			}
			opportunities = append(opportunities, vs...)
		}
	}
	return &api.ScanResponse{Opportunities: opportunities}, nil
}
