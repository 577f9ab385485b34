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

// cashCmd is the shared implementation of the pure cash-flow kinds.
type cashCmd struct {
	kind networth.TxKind

	account string
	day     string
	amount  float64
	note    string
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "account id")
	f.StringVar(&c.day, "d", "", "date (YYYY-MM-DD), defaults to today")
	f.Float64Var(&c.amount, "q", 0, "amount in the account currency, always positive")
	f.StringVar(&c.note, "note", "", "free-form note")
}

func (c *cashCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "-a is required")
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
	tx, err := networth.NewCashFlow(c.kind, day, account.ID, networth.M(c.amount, account.Currency))
	if err != nil {
		return fail(err)
	}
	tx.Note = c.note
	tx, err = s.AddTransaction(tx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s of %s on %s in %q\n", tx.Kind, tx.Total, tx.Date, account.Name)
	return subcommands.ExitSuccess
}

type depositCmd struct{ cashCmd }

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "record an external cash deposit" }
func (*depositCmd) Usage() string {
	return `deposit -a <account-id> -q <amount> [-d <date>]

  Records external money entering an account. Deposits count toward the
  invested total.
`
}
func (c *depositCmd) SetFlags(f *flag.FlagSet) { c.kind = networth.TxDeposit; c.cashCmd.SetFlags(f) }

type withdrawCmd struct{ cashCmd }

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "record an external cash withdrawal" }
func (*withdrawCmd) Usage() string {
	return `withdraw -a <account-id> -q <amount> [-d <date>]

  Records money leaving an account. Withdrawals reduce the invested total.
`
}
func (c *withdrawCmd) SetFlags(f *flag.FlagSet) { c.kind = networth.TxWithdraw; c.cashCmd.SetFlags(f) }

type dividendCmd struct{ cashCmd }

func (*dividendCmd) Name() string     { return "dividend" }
func (*dividendCmd) Synopsis() string { return "record a cash dividend" }
func (*dividendCmd) Usage() string {
	return `dividend -a <account-id> -q <amount> [-d <date>]

  Records a cash dividend credited to an account.
`
}
func (c *dividendCmd) SetFlags(f *flag.FlagSet) { c.kind = networth.TxDividend; c.cashCmd.SetFlags(f) }

type interestCmd struct{ cashCmd }

func (*interestCmd) Name() string     { return "interest" }
func (*interestCmd) Synopsis() string { return "record interest income" }
func (*interestCmd) Usage() string {
	return `interest -a <account-id> -q <amount> [-d <date>]

  Records interest credited to an account.
`
}
func (c *interestCmd) SetFlags(f *flag.FlagSet) { c.kind = networth.TxInterest; c.cashCmd.SetFlags(f) }

type feeCmd struct{ cashCmd }

func (*feeCmd) Name() string     { return "fee" }
func (*feeCmd) Synopsis() string { return "record a standalone fee" }
func (*feeCmd) Usage() string {
	return `fee -a <account-id> -q <amount> [-d <date>]

  Records a fee debited from an account, outside any trade.
`
}
func (c *feeCmd) SetFlags(f *flag.FlagSet) { c.kind = networth.TxFee; c.cashCmd.SetFlags(f) }
