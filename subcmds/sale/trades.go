// Copyright (c) 2026 BVK Chaitanya

package sale

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/cli"
	"github.com/bvk/flipbot/subcmds"
)

type Trades struct {
	subcmds.ClientFlags
}

func (c *Trades) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("trades", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Trades) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.TradeListRequest{}
	resp, err := subcmds.Post[api.TradeListResponse](ctx, &c.ClientFlags, api.TradeListPath, req)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tGAME\tITEM\tOUTCOME\tBUY\tSELL\tPROFIT\tCLOSED")
	for _, t := range resp.Trades {
		profit := int64(0)
		if t.SellPrice != 0 {
			profit = t.SellPrice - t.BuyPrice - t.Commission - t.Fees
		}
		closed := ""
		if !t.ClosedAt.IsZero() {
			closed = t.ClosedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			t.UID, t.Game, t.ItemID, t.Outcome, t.BuyPrice, t.SellPrice, profit, closed)
	}
	return tw.Flush()
}

func (c *Trades) Synopsis() string {
	return "Prints archived trade records"
}
