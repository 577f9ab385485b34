package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"networth"
)

type txCmd struct {
	account string
	tail    int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions in replay order" }
func (*txCmd) Usage() string {
	return `tx [-a <account-id>] [-tail <n>]

  Lists transactions, oldest first, in the exact order the replay
  engine applies them.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "only transactions of this account")
	f.IntVar(&c.tail, "tail", 0, "show only the last N transactions")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	txs, err := s.Transactions()
	if err != nil {
		return fail(err)
	}
	if c.account != "" {
		filtered := txs[:0]
		for _, tx := range txs {
			if tx.AccountID == c.account {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}
	if c.tail > 0 && len(txs) > c.tail {
		txs = txs[len(txs)-c.tail:]
	}

	fmt.Printf("Date\t\tID\tKind\tQuantity\tCash\n")
	for _, tx := range txs {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.ID, tx.Kind, quantityOf(tx), tx.CashEffect().SignedString())
	}
	return subcommands.ExitSuccess
}

func quantityOf(tx networth.Transaction) string {
	if !tx.Kind.IsTrade() {
		return "-"
	}
	return tx.Quantity.String()
}

type txDelCmd struct{}

func (*txDelCmd) Name() string     { return "tx-del" }
func (*txDelCmd) Synopsis() string { return "delete a transaction" }
func (*txDelCmd) Usage() string {
	return `tx-del <transaction-id>

  Deletes a transaction and recomputes the owning account's balance.
  Snapshots from the transaction date onward are stale until the next
  rebuild, which replays the ledger as if the entry never existed.
`
}

func (c *txDelCmd) SetFlags(f *flag.FlagSet) {}

func (c *txDelCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one transaction id")
		return subcommands.ExitUsageError
	}
	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if err := s.DeleteTransaction(f.Arg(0)); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted transaction %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
