package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"networth/date"
)

type historyCmd struct {
	from string
	to   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily net-worth series" }
func (*historyCmd) Usage() string {
	return `history [-from <date>] [-to <date>]

  Prints the persisted snapshot rows, one per day: equity, cash, market
  value, invested total and holdings count, all in the settlement
  currency.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first day to display (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last day to display, defaults to today")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	to := date.Today()
	if c.to != "" {
		if to, err = date.Parse(c.to); err != nil {
			return fail(err)
		}
	}
	from := to.Add(-30)
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			return fail(err)
		}
	}

	rows, err := s.Snapshots(date.NewRange(from, to))
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Date\t\tEquity\tCash\tMarket\tInvested\tHoldings\n")
	for _, row := range rows {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\t%d\n",
			row.Day, row.TotalEquity, row.TotalCash, row.TotalMarket, row.TotalInvested, row.HoldingsCount)
	}
	return subcommands.ExitSuccess
}
