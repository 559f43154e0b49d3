// Copyright (c) 2026 BVK Chaitanya

package db

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/bvk/flipbot/cli"
	"github.com/bvk/flipbot/subcmds/cmdutil"
	"github.com/bvkgo/kv"
)

type Edit struct {
	cmdutil.DBFlags

	valueType string

	editor string
}

func (c *Edit) Synopsis() string {
	return "Edits the value at a key with an external editor"
}

func (c *Edit) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("edit", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.valueType, "value-type", "", "gobs type name for the value")
	fset.StringVar(&c.editor, "editor", "", "editor command (default $EDITOR)")
	return fset, cli.CmdFunc(c.run)
}

func (c *Edit) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (key) argument")
	}
	if len(c.valueType) == 0 {
		return fmt.Errorf("value-type flag is required")
	}

	editor := c.editor
	if len(editor) == 0 {
		editor = os.Getenv("EDITOR")
	}
	if len(editor) == 0 {
		return fmt.Errorf("no editor configured; set the -editor flag or $EDITOR")
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

	js, err := gobToJSON(c.valueType, data)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "flipbot-db-edit-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(js); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, editor, tmp.Name())
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor has failed: %w", err)
	}

	edited, err := os.ReadFile(tmp.Name())
	if err != nil {
		return err
	}
	if bytes.Equal(edited, js) {
		fmt.Println("no changes")
		return nil
	}

	encoded, err := jsonToGob(c.valueType, edited)
	if err != nil {
		return err
	}
	write := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, args[0], bytes.NewReader(encoded))
	}
	if err := kv.WithReadWriter(ctx, db, write); err != nil {
		return fmt.Errorf("could not write key %q: %w", args[0], err)
	}
	return nil
}
