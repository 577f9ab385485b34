// Package cmd implements the CLI application to manage the ledger and
// reconstruct the daily net-worth series.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"networth"
	"networth/store"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&accountAddCmd{}, "accounts")
	c.Register(&accountsCmd{}, "accounts")
	c.Register(&accountDelCmd{}, "accounts")
	c.Register(&assetsCmd{}, "accounts")
	c.Register(&assetTagCmd{}, "accounts")

	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&depositCmd{}, "transactions")
	c.Register(&withdrawCmd{}, "transactions")
	c.Register(&dividendCmd{}, "transactions")
	c.Register(&interestCmd{}, "transactions")
	c.Register(&feeCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
	c.Register(&txDelCmd{}, "transactions")

	c.Register(&rebuildCmd{}, "snapshots")
	c.Register(&backfillCmd{}, "snapshots")
	c.Register(&historyCmd{}, "snapshots")
	c.Register(&daemonCmd{}, "snapshots")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the YAML configuration file. Defaults apply when missing.")

// openStore loads the configuration and opens the database it points to.
func openStore() (*store.Store, *networth.Config, error) {
	cfg, err := networth.LoadConfig(*configFile)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

// newRebuilder wires the full reconstruction pipeline over the store.
func newRebuilder(s *store.Store, cfg *networth.Config) (*networth.Rebuilder, error) {
	rates, err := cfg.RateTable()
	if err != nil {
		return nil, err
	}
	return &networth.Rebuilder{
		Ledger:     s,
		Snapshots:  s,
		Lock:       s,
		Prices:     networth.NewPriceCache(s, networth.NewYahooProvider()),
		Rates:      rates,
		Settlement: cfg.Settlement,
	}, nil
}

// fail prints an error the way every subcommand reports one.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
