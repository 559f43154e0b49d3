// Copyright (c) 2026 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/bvk/flipbot/cli"
	"github.com/bvk/flipbot/tradehub"
)

type TradeHub struct {
	dataDir     string
	skipTesting bool

	kid string
	pem string
}

func (c *TradeHub) Synopsis() string {
	return "Configures TradeHub marketplace API keys"
}

func (c *TradeHub) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("tradehub", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.kid, "key", "", "TradeHub API key id")
	fset.StringVar(&c.pem, "pem", "", "TradeHub API signing key in PEM format")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return fset, cli.CmdFunc(c.run)
}

func (c *TradeHub) CommandHelp() string {
	return `

Command "tradehub" configures the marketplace API keys required for all
trading operations. Escaped newlines in the pem argument are expanded, so
the key can be passed on a single line:

  $ flipbot setup tradehub --key=key-uuid --pem="-----BEGIN EC PRIVATE ... PRIVATE KEY-----\n"

`
}

func (c *TradeHub) run(ctx context.Context, args []string) error {
	if len(c.kid) == 0 || len(c.pem) == 0 {
		return fmt.Errorf(`both "key" and "pem" parameters are required`)
	}
	secretsPath, secrets, err := loadSecrets(c.dataDir)
	if err != nil {
		return err
	}

	// Replace escaped newline characters with newlines.
	pem := strings.ReplaceAll(c.pem, `\\n`, "\n")
	pem = strings.ReplaceAll(pem, `\n`, "\n")

	secrets.TradeHub = &tradehub.Credentials{
		KID: c.kid,
		PEM: pem,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		// Attempt an authenticated call to validate the keys.
		client, err := tradehub.New(ctx, c.kid, pem, nil)
		if err != nil {
			return err
		}
		defer client.Close()
		if _, err := client.Balance(ctx); err != nil {
			return fmt.Errorf("could not fetch account balance: %w", err)
		}
	}

	return saveSecrets(secretsPath, secrets)
}
