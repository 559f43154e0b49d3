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

type Cancel struct {
	subcmds.ClientFlags
}

func (c *Cancel) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("cancel", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Cancel) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (sale-id) argument")
	}
	req := &api.SaleCancelRequest{
		UID: args[0],
	}
	if err := req.Check(); err != nil {
		return err
	}
	resp, err := subcmds.Post[api.SaleCancelResponse](ctx, &c.ClientFlags, api.SaleCancelPath, req)
	if err != nil {
		return err
	}
	jsdata, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Printf("%s\n", jsdata)
	return nil
}

func (c *Cancel) Synopsis() string {
	return "Cancels a scheduled sale and delists the item"
}
