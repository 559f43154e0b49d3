// Copyright (c) 2026 BVK Chaitanya

package db

import (
	"bytes"
	"context"
	"flag"
	"fmt"

	"github.com/bvk/flipbot/cli"
	"github.com/bvk/flipbot/subcmds/cmdutil"
	"github.com/bvkgo/kv"
)

type Set struct {
	cmdutil.DBFlags

	valueType string
}

func (c *Set) Synopsis() string {
	return "Writes a value at a key in the database"
}

func (c *Set) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("set", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.valueType, "value-type", "", "gobs type name for the value")
	return fset, cli.CmdFunc(c.run)
}

func (c *Set) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("this command takes two (key, value) arguments")
	}

	data := []byte(args[1])
	if len(c.valueType) != 0 {
		v, err := jsonToGob(c.valueType, data)
		if err != nil {
			return err
		}
		data = v
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	write := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, args[0], bytes.NewReader(data))
	}
	if err := kv.WithReadWriter(ctx, db, write); err != nil {
		return fmt.Errorf("could not write key %q: %w", args[0], err)
	}
	return nil
}
