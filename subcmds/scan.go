// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/cli"
)

type Scan struct {
	ClientFlags

	tiers string
}

func (c *Scan) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("scan", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.tiers, "tiers", "", "comma separated price tiers (1-5) to scan")
	return fset, cli.CmdFunc(c.run)
}

func (c *Scan) run(ctx context.Context, args []string) error {
	req := &api.ScanRequest{
		Games: args,
	}
	if len(c.tiers) != 0 {
		for _, f := range strings.Split(c.tiers, ",") {
			tier, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return fmt.Errorf("invalid tier %q: %w", f, err)
			}
			req.Tiers = append(req.Tiers, tier)
		}
	}
	if err := req.Check(); err != nil {
		return err
	}
	resp, err := Post[api.ScanResponse](ctx, &c.ClientFlags, api.ScanPath, req)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "GAME\tITEM\tTITLE\tBUY\tSELL\tNET\tPROFIT%\tLIQUIDITY")
	for _, opp := range resp.Opportunities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%d\n",
			opp.Game, opp.ItemID, opp.Title, opp.BuyPrice, opp.SellPrice,
			opp.NetProfit, opp.ProfitPct.StringFixed(2), opp.LiquidityScore)
	}
	return tw.Flush()
}

func (c *Scan) Synopsis() string {
	return "Scans marketplaces for arbitrage opportunities"
}

func (c *Scan) CommandHelp() string {
	return `

Command "scan" asks the flipbot daemon to run an on-demand arbitrage
scan and prints the opportunities it finds. Games may be given as
arguments; without any the daemon scans its configured games. The
-tiers flag restricts the scan to the given price tiers.

For example,

  $ flipbot scan rust
  $ flipbot scan -tiers 1,2 rust tf2

`
}
