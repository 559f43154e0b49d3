// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/gobs"
	"github.com/bvk/flipbot/telegram"
	"github.com/bvk/flipbot/timerange"
	"github.com/visvasity/cli"
)

func (s *Server) AddTelegramCommand(ctx context.Context, name, purpose string, handler telegram.CmdFunc) error {
	if s.telegramClient != nil {
		return s.telegramClient.AddCommand(ctx, name, purpose, handler)
	}
	return nil // Ignored
}

func (s *Server) registerTelegramCommands(ctx context.Context) error {
	if s.telegramClient == nil {
		return nil
	}
	commands := []struct {
		name, purpose string
		handler       telegram.CmdFunc
	}{
		{"scan", "Scans the configured games for arbitrage opportunities", s.scanTelegramCmd},
		{"sales", "Lists the in-flight scheduled sales", s.salesTelegramCmd},
		{"backtest", "Replays a strategy over an item's recorded history", s.backtestTelegramCmd},
		{"profit", "Prints realized profit per time period", s.profitTelegramCmd},
	}
	for _, c := range commands {
		if err := s.AddTelegramCommand(ctx, c.name, c.purpose, c.handler); err != nil {
			return fmt.Errorf("could not add telegram command %q: %w", c.name, err)
		}
	}
	return nil
}

// Summarize totals the realized profit of archived trades that closed within
// each of the given periods. Canceled trades contribute zero.
func (s *Server) Summarize(ctx context.Context, periods ...*timerange.Range) ([]int64, error) {
	trades, err := s.seller.Trades(ctx)
	if err != nil {
		return nil, err
	}

	profits := make([]int64, len(periods))
	for _, trade := range trades {
		net := tradeProfit(trade)
		for i, period := range periods {
			if period.InRange(trade.ClosedAt) {
				profits[i] += net
			}
		}
	}
	return profits, nil
}

func tradeProfit(trade *gobs.TradeRecord) int64 {
	if trade.SellPrice == 0 {
		return 0
	}
	return trade.SellPrice - trade.BuyPrice - trade.Commission - trade.Fees
}

var profitPeriods = []struct {
	key   string
	rangf func(*time.Location) *timerange.Range
}{
	{"today", timerange.Today},
	{"yesterday", timerange.Yesterday},
	{"this-week", timerange.ThisWeek},
	{"last-week", timerange.LastWeek},
	{"this-month", timerange.ThisMonth},
	{"last-month", timerange.LastMonth},
	{"this-year", timerange.ThisYear},
	{"last-year", timerange.LastYear},
	{"lifetime", timerange.Lifetime},
}

func (s *Server) profitTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	if len(args) == 0 {
		var periods []*timerange.Range
		for _, p := range profitPeriods {
			periods = append(periods, p.rangf(time.Local))
		}
		vs, err := s.Summarize(ctx, periods...)
		if err != nil {
			return err
		}
		for i, p := range profitPeriods {
			fmt.Fprintf(stdout, "%s: %d\n", p.key, vs[i])
		}
		return nil
	}

	for _, p := range profitPeriods {
		if strings.EqualFold(args[0], p.key) {
			vs, err := s.Summarize(ctx, p.rangf(time.Local))
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%d\n", vs[0])
			return nil
		}
	}
	return fmt.Errorf("invalid/unsupported arguments")
}

func (s *Server) scanTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	req := &api.ScanRequest{Games: args}
	resp, err := s.doScan(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Opportunities) == 0 {
		fmt.Fprintln(stdout, "no opportunities found")
		return nil
	}

	// Telegram messages have a size limit; print the top entries only.
	const limit = 10
	for i, o := range resp.Opportunities {
		if i == limit {
			fmt.Fprintf(stdout, "... and %d more\n", len(resp.Opportunities)-limit)
			break
		}
		fmt.Fprintf(stdout, "%s %s: buy %d sell %d net %d (%s%%)\n", o.Game, o.Title, o.BuyPrice, o.SellPrice, o.NetProfit, o.ProfitPct.StringFixed(1))
	}
	return nil
}

func (s *Server) salesTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	sales := s.seller.ActiveSales()
	if len(sales) == 0 {
		fmt.Fprintln(stdout, "no active sales")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 1, ' ', 0)
	for _, sale := range sales {
		fmt.Fprintf(tw, "%s\t%s\t%s\tbuy %d\task %d\n", sale.UID, sale.ItemID, sale.State, sale.BuyPrice, sale.ListedPrice)
	}
	return tw.Flush()
}

func (s *Server) backtestTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	if len(args) < 2 {
		return fmt.Errorf("usage: /backtest <item-id> <strategy> [days]")
	}
	req := &api.BacktestRequest{
		ItemID:         args[0],
		Strategy:       args[1],
		Days:           30,
		InitialBalance: 100000,
	}
	if len(args) > 2 {
		if _, err := fmt.Sscanf(args[2], "%d", &req.Days); err != nil {
			return fmt.Errorf("invalid days value %q: %w", args[2], err)
		}
	}

	resp, err := s.doBacktest(ctx, req)
	if err != nil {
		return err
	}
	r := resp.Result
	fmt.Fprintf(stdout, "strategy: %s\n", r.Strategy)
	fmt.Fprintf(stdout, "final equity: %d (roi %s%%)\n", r.FinalEquity, r.ROI.StringFixed(2))
	fmt.Fprintf(stdout, "trades: %d (win rate %s%%)\n", len(r.Trades), r.WinRate.StringFixed(1))
	fmt.Fprintf(stdout, "max drawdown: %s%%\n", r.MaxDrawdown.StringFixed(2))
	return nil
}
