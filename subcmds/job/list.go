// Copyright (c) 2026 BVK Chaitanya

// Package job implements subcommands to control the daemon's background
// jobs.
package job

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

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

	req := &api.JobListRequest{}
	resp, err := subcmds.Post[api.JobListResponse](ctx, &c.ClientFlags, api.JobListPath, req)
	if err != nil {
		return err
	}
	jsdata, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Printf("%s\n", jsdata)
	return nil
}

func (c *List) Synopsis() string {
	return "Prints background job ids and their states"
}
