// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/cli"
)

type Backtest struct {
	ClientFlags

	strategy string
	days     int
	balance  int64
	feeBps   int64
}

func (c *Backtest) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("backtest", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.strategy, "strategy", "undercut", "strategy id to replay")
	fset.IntVar(&c.days, "days", 30, "trailing days of price history to replay")
	fset.Int64Var(&c.balance, "initial-balance", 100000, "starting balance in minor units")
	fset.Int64Var(&c.feeBps, "fee-bps", 0, "commission rate in basis points (zero picks the default)")
	return fset, cli.CmdFunc(c.run)
}

func (c *Backtest) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (item-id) argument")
	}
	req := &api.BacktestRequest{
		ItemID:         args[0],
		Strategy:       c.strategy,
		Days:           c.days,
		InitialBalance: c.balance,
		FeeBps:         c.feeBps,
	}
	if err := req.Check(); err != nil {
		return err
	}
	resp, err := Post[api.BacktestResponse](ctx, &c.ClientFlags, api.BacktestPath, req)
	if err != nil {
		return err
	}
	result := resp.Result

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Strategy\t%s\n", result.Strategy)
	fmt.Fprintf(tw, "Initial balance\t%d\n", result.InitialBalance)
	fmt.Fprintf(tw, "Final balance\t%d\n", result.FinalBalance)
	fmt.Fprintf(tw, "Final equity\t%d\n", result.FinalEquity)
	fmt.Fprintf(tw, "ROI\t%s%%\n", result.ROI.StringFixed(2))
	fmt.Fprintf(tw, "Trades\t%d (%d wins, %d losses)\n", len(result.Trades), result.Wins, result.Losses)
	fmt.Fprintf(tw, "Win rate\t%s%%\n", result.WinRate.StringFixed(2))
	fmt.Fprintf(tw, "Avg profit\t%s\n", result.AvgProfit.StringFixed(2))
	fmt.Fprintf(tw, "Max drawdown\t%s%%\n", result.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(tw, "Sharpe\t%s\n", result.Sharpe.StringFixed(2))
	return tw.Flush()
}

func (c *Backtest) Synopsis() string {
	return "Replays recorded price history through a strategy"
}

func (c *Backtest) CommandHelp() string {
	return `

Command "backtest" replays the recorded price history for an item
through one of the registered resale strategies and prints the
simulated performance.

For example,

  $ flipbot backtest -strategy undercut -days 60 rust/lr300-rifle

`
}
