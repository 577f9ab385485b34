package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"networth"
	"networth/date"
)

type rebuildCmd struct {
	from string
}

func (*rebuildCmd) Name() string     { return "rebuild" }
func (*rebuildCmd) Synopsis() string { return "reconstruct the daily snapshot series" }
func (*rebuildCmd) Usage() string {
	return `rebuild [-from <date>]

  Replays the ledger day by day from the given date through today,
  values every day at market closes, and atomically replaces the
  snapshot rows in that range. Without -from it starts at the earliest
  account inception. Safe to run repeatedly.
`
}

func (c *rebuildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first day to rebuild (YYYY-MM-DD)")
}

func (c *rebuildCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var from date.Date
	if c.from != "" {
		var err error
		if from, err = date.Parse(c.from); err != nil {
			return fail(err)
		}
	}

	s, cfg, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	rebuilder, err := newRebuilder(s, cfg)
	if err != nil {
		return fail(err)
	}
	summary, err := rebuilder.Rebuild(from)
	if err != nil {
		return fail(err)
	}
	fmt.Println(summary)
	for _, w := range summary.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return subcommands.ExitSuccess
}

type backfillCmd struct {
	symbol string
	from   string
	to     string
}

func (*backfillCmd) Name() string     { return "backfill" }
func (*backfillCmd) Synopsis() string { return "bulk-load historical closes for a symbol" }
func (*backfillCmd) Usage() string {
	return `backfill -s <symbol> -from <date> [-to <date>]

  Fetches the full close series for a symbol in one provider call and
  stores it, so a later rebuild does not pay one call per day.
`
}

func (c *backfillCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "ticker symbol")
	f.StringVar(&c.from, "from", "", "first day to fetch (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last day to fetch, defaults to today")
}

func (c *backfillCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.from == "" {
		fmt.Fprintln(os.Stderr, "-s and -from are required")
		return subcommands.ExitUsageError
	}
	from, err := date.Parse(c.from)
	if err != nil {
		return fail(err)
	}
	to := date.Today()
	if c.to != "" {
		if to, err = date.Parse(c.to); err != nil {
			return fail(err)
		}
	}

	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	cache := networth.NewPriceCache(s, networth.NewYahooProvider())
	n, err := cache.Backfill(c.symbol, date.NewRange(from, to))
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Stored %d closes for %s\n", n, c.symbol)
	return subcommands.ExitSuccess
}
