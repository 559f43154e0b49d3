// Copyright (c) 2026 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/flipbot/cli"
	"github.com/bvk/flipbot/subcmds"
	"github.com/bvk/flipbot/subcmds/db"
	"github.com/bvk/flipbot/subcmds/job"
	"github.com/bvk/flipbot/subcmds/sale"
	"github.com/bvk/flipbot/subcmds/setup"
)

func main() {
	dbCmds := []cli.Command{
		new(db.Get),
		new(db.Set),
		new(db.Edit),
		new(db.Delete),
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	jobCmds := []cli.Command{
		new(job.List),
		new(job.Pause),
		new(job.Resume),
		new(job.Cancel),
	}

	saleCmds := []cli.Command{
		new(sale.Add),
		new(sale.List),
		new(sale.Cancel),
		new(sale.Trades),
	}

	setupCmds := []cli.Command{
		new(setup.TradeHub),
		new(setup.Telegram),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Status),
		new(subcmds.Scan),
		new(subcmds.Backtest),
		cli.CommandGroup("sale", "Manage scheduled resales", saleCmds...),
		cli.CommandGroup("job", "Control background jobs", jobCmds...),
		cli.CommandGroup("db", "View/update database directly", dbCmds...),
		cli.CommandGroup("setup", "Configure marketplace and telegram keys", setupCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
