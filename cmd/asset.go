package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type assetsCmd struct{}

func (*assetsCmd) Name() string     { return "assets" }
func (*assetsCmd) Synopsis() string { return "list known assets" }
func (*assetsCmd) Usage() string {
	return `assets

  Lists every asset ever traded, with its quote currency and tags.
`
}

func (c *assetsCmd) SetFlags(f *flag.FlagSet) {}

func (c *assetsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	assets, err := s.Assets()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("ID\tSymbol\tName\tCurrency\tTags\n")
	for _, a := range assets {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", a.ID, a.Symbol, a.Name, a.Currency, strings.Join(a.Tags, ","))
	}
	return subcommands.ExitSuccess
}

type assetTagCmd struct {
	tags string
}

func (*assetTagCmd) Name() string     { return "asset-tag" }
func (*assetTagCmd) Synopsis() string { return "set the tags of an asset" }
func (*assetTagCmd) Usage() string {
	return `asset-tag -tags <tag,tag,...> <asset-id>

  Replaces the free-form tags of an asset. Tags are purely descriptive;
  they never affect valuation.
`
}

func (c *assetTagCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tags, "tags", "", "comma-separated tags, empty clears them")
}

func (c *assetTagCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one asset id")
		return subcommands.ExitUsageError
	}
	s, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	var tags []string
	if c.tags != "" {
		tags = strings.Split(c.tags, ",")
	}
	if err := s.TagAsset(f.Arg(0), tags); err != nil {
		return fail(err)
	}
	fmt.Printf("Tagged asset %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
