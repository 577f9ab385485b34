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

// tradeCmd is the shared implementation of buy and sell.
type tradeCmd struct {
	kind networth.TxKind

	account  string
	symbol   string
	name     string
	day      string
	quantity float64
	price    float64
	fee      float64
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "account id the trade settles in")
	f.StringVar(&c.symbol, "s", "", "ticker symbol, e.g. AAPL or 0700.HK")
	f.StringVar(&c.name, "name", "", "display name for a first-seen symbol")
	f.StringVar(&c.day, "d", "", "trade date (YYYY-MM-DD), defaults to today")
	f.Float64Var(&c.quantity, "q", 0, "number of units")
	f.Float64Var(&c.price, "p", 0, "unit price in the account currency")
	f.Float64Var(&c.fee, "fee", 0, "fee in the account currency")
}

func (c *tradeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.symbol == "" {
		fmt.Fprintln(os.Stderr, "-a and -s are required")
		return subcommands.ExitUsageError
	}
	day := date.Today()
	if c.day != "" {
		var err error
		if day, err = date.Parse(c.day); err != nil {
			return fail(err)
		}
	}

	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	account, err := s.Account(c.account)
	if err != nil {
		return fail(err)
	}
	asset, err := s.EnsureAsset(c.symbol, c.name)
	if err != nil {
		return fail(err)
	}

	tx, err := networth.NewTrade(c.kind, day, account.ID, asset.ID,
		networth.Q(c.quantity),
		networth.M(c.price, account.Currency),
		networth.M(c.fee, account.Currency))
	if err != nil {
		return fail(err)
	}
	tx, err = s.AddTransaction(tx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s of %s %s on %s, total %s\n", tx.Kind, tx.Quantity, asset.Symbol, tx.Date, tx.Total)
	return subcommands.ExitSuccess
}

type buyCmd struct{ tradeCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase of an asset" }
func (*buyCmd) Usage() string {
	return `buy -a <account-id> -s <symbol> -q <quantity> -p <price> [-fee <fee>] [-d <date>]

  Records a BUY. The fee is paid on top of quantity*price. An unseen
  symbol creates its asset on the fly.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	c.kind = networth.TxBuy
	c.tradeCmd.SetFlags(f)
}

type sellCmd struct{ tradeCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale of an asset" }
func (*sellCmd) Usage() string {
	return `sell -a <account-id> -s <symbol> -q <quantity> -p <price> [-fee <fee>] [-d <date>]

  Records a SELL. The fee comes out of the proceeds.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	c.kind = networth.TxSell
	c.tradeCmd.SetFlags(f)
}
