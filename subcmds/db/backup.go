// Copyright (c) 2026 BVK Chaitanya

package db

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bvk/flipbot/cli"
	"github.com/bvk/flipbot/kvutil"
	"github.com/bvk/flipbot/subcmds/cmdutil"
	"github.com/bvkgo/kv"
)

type Backup struct {
	cmdutil.DBFlags
}

func (c *Backup) Synopsis() string {
	return "Saves a snapshot of the database into a file"
}

func (c *Backup) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("backup", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Backup) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (output backup file) argument")
	}

	fp, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("could not create backup file %q: %w", args[0], err)
	}
	defer fp.Close()

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	w := bufio.NewWriter(fp)
	export := func(ctx context.Context, r kv.Reader) error {
		return kvutil.Export(ctx, r, w)
	}
	if err := kv.WithReader(ctx, db, export); err != nil {
		return fmt.Errorf("could not export the database: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return fp.Sync()
}
