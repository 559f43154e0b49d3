// Copyright (c) 2026 BVK Chaitanya

package sale

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/cli"
	"github.com/bvk/flipbot/subcmds"
)

type Add struct {
	subcmds.ClientFlags

	game      string
	buyPrice  int64
	strategy  string
	marginBps int64
}

func (c *Add) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("add", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.game, "game", "", "game the item belongs to")
	fset.Int64Var(&c.buyPrice, "buy-price", 0, "purchase price in minor units")
	fset.StringVar(&c.strategy, "strategy", "", "pricing strategy (empty picks UNDERCUT)")
	fset.Int64Var(&c.marginBps, "margin-bps", 0, "target profit margin in basis points")
	return fset, cli.CmdFunc(c.run)
}

func (c *Add) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (item-id) argument")
	}
	req := &api.SaleScheduleRequest{
		ItemID:    args[0],
		Game:      c.game,
		BuyPrice:  c.buyPrice,
		Strategy:  c.strategy,
		MarginBps: c.marginBps,
	}
	if err := req.Check(); err != nil {
		return err
	}
	resp, err := subcmds.Post[api.SaleScheduleResponse](ctx, &c.ClientFlags, api.SaleSchedulePath, req)
	if err != nil {
		return err
	}
	jsdata, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Printf("%s\n", jsdata)
	return nil
}

func (c *Add) Synopsis() string {
	return "Schedules an item for automatic resale"
}

func (c *Add) CommandHelp() string {
	return `

Command "add" schedules an already-bought item for automatic resale.
The daemon lists the item per the chosen pricing strategy, adjusts the
ask as competition moves and archives a trade record when the sale
reaches a terminal state.

For example,

  $ flipbot sale add -game rust -buy-price 12500 rust/lr300-rifle

`
}
