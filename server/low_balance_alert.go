// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bvk/flipbot/ctxutil"
	"github.com/bvk/flipbot/metrics"
)

// goWatchBalance polls the marketplace balance for the status endpoint, the
// metrics gauge and the low-balance alert.
func (s *Server) goWatchBalance(ctx context.Context) {
	for ctx.Err() == nil {
		balance, err := s.product.Balance(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("could not fetch account balance (ignored)", "err", err)
			}
		} else {
			metrics.AccountBalance.Set(float64(balance))

			s.mu.Lock()
			s.balance = balance
			limit := s.state.LowBalanceLimit
			s.mu.Unlock()

			if err := s.alertOnLowBalance(ctx, balance, limit); err != nil {
				slog.Warn("could not send low balance alert", "balance", balance, "err", err)
			}
		}
		ctxutil.Sleep(ctx, s.opts.BalanceCheckInterval)
	}
}

// alertOnLowBalance pushes one alert when the balance drops below the
// configured limit, then freezes further alerts for an hour so the owner
// isn't spammed on every poll.
func (s *Server) alertOnLowBalance(ctx context.Context, balance, limit int64) error {
	if limit <= 0 || balance > limit {
		return nil
	}

	now := time.Now()
	const key = "alerts/low-balance"

	s.mu.Lock()
	if deadline, ok := s.alertFreezeDeadlineMap[key]; ok {
		if now.Before(deadline) {
			s.mu.Unlock()
			return nil
		}
		delete(s.alertFreezeDeadlineMap, key)
	}
	s.alertFreezeDeadlineMap[key] = now.Add(time.Hour)
	s.mu.Unlock()

	s.SendMessage(ctx, now, fmt.Sprintf("available balance %d is below the configured limit %d", balance, limit))
	return nil
}
