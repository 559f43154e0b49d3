// Copyright (c) 2026 BVK Chaitanya

// Package sale implements subcommands to manage scheduled resales.
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

type List struct {
	subcmds.ClientFlags
}

func (c *List) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.SaleListRequest{}
	resp, err := subcmds.Post[api.SaleListResponse](ctx, &c.ClientFlags, api.SaleListPath, req)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tGAME\tITEM\tSTATE\tSTRATEGY\tBUY\tASK")
	for _, s := range resp.Sales {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			s.UID, s.Game, s.ItemID, s.State, s.Strategy, s.BuyPrice, s.ListedPrice)
	}
	return tw.Flush()
}

func (c *List) Synopsis() string {
	return "Prints active scheduled sales"
}
