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

type accountAddCmd struct {
	name      string
	kind      string
	currency  string
	inception string
}

func (*accountAddCmd) Name() string     { return "account-add" }
func (*accountAddCmd) Synopsis() string { return "create a new account" }
func (*accountAddCmd) Usage() string {
	return `account-add -name <name> [-kind bank|brokerage|crypto] [-c <currency>] [-since <date>]

  Creates a cash account. The inception date bounds how far back the
  account can have activity; it defaults to today.
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "display name of the account")
	f.StringVar(&c.kind, "kind", "bank", "account kind: bank, brokerage or crypto")
	f.StringVar(&c.currency, "c", "USD", "native currency of the account")
	f.StringVar(&c.inception, "since", "", "inception date (YYYY-MM-DD), defaults to today")
}

func (c *accountAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		return subcommands.ExitUsageError
	}
	kind, err := networth.ParseAccountKind(c.kind)
	if err != nil {
		return fail(err)
	}
	inception := date.Today()
	if c.inception != "" {
		if inception, err = date.Parse(c.inception); err != nil {
			return fail(err)
		}
	}

	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	a, err := s.AddAccount(networth.Account{
		Name:      c.name,
		Kind:      kind,
		Currency:  c.currency,
		Inception: inception,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Created %s account %q (%s) id=%s\n", a.Kind, a.Name, a.Currency, a.ID)
	return subcommands.ExitSuccess
}

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with their current balances" }
func (*accountsCmd) Usage() string {
	return `accounts

  Lists every account with its denormalized cash balance.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {}

func (c *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	accounts, err := s.Accounts()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("ID\tName\tKind\tSince\tBalance\n")
	for _, a := range accounts {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Kind, a.Inception, a.Balance)
	}
	return subcommands.ExitSuccess
}

type accountDelCmd struct{}

func (*accountDelCmd) Name() string     { return "account-del" }
func (*accountDelCmd) Synopsis() string { return "delete an account and its transactions" }
func (*accountDelCmd) Usage() string {
	return `account-del <account-id>

  Deletes an account. Its transactions go with it; the assets it traded
  stay. Snapshots are stale until the next rebuild.
`
}

func (c *accountDelCmd) SetFlags(f *flag.FlagSet) {}

func (c *accountDelCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one account id")
		return subcommands.ExitUsageError
	}
	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if err := s.DeleteAccount(f.Arg(0)); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted account %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
