// Copyright (c) 2026 BVK Chaitanya

package db

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/bvk/flipbot/cli"
	"github.com/bvk/flipbot/subcmds/cmdutil"
	"github.com/bvkgo/kv"
)

type Get struct {
	cmdutil.DBFlags

	valueType string
}

func (c *Get) Synopsis() string {
	return "Prints the value at a key in the database"
}

func (c *Get) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.valueType, "value-type", "", "gobs type name for the value")
	return fset, cli.CmdFunc(c.run)
}

func (c *Get) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (key) argument")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	var data []byte
	read := func(ctx context.Context, r kv.Reader) error {
		v, err := r.Get(ctx, args[0])
		if err != nil {
			return err
		}
		data, err = io.ReadAll(v)
		return err
	}
	if err := kv.WithReader(ctx, db, read); err != nil {
		return fmt.Errorf("could not read key %q: %w", args[0], err)
	}

	if len(c.valueType) == 0 {
		fmt.Printf("%s\n", data)
		return nil
	}
	js, err := gobToJSON(c.valueType, data)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", js)
	return nil
}
