package cmd

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"

	"networth"
)

type daemonCmd struct{}

func (*daemonCmd) Name() string     { return "daemon" }
func (*daemonCmd) Synopsis() string { return "advance the snapshot series on a schedule" }
func (*daemonCmd) Usage() string {
	return `daemon

  Runs forever, advancing the snapshot series from the last snapshotted
  day through today on the configured interval. The first advance
  happens immediately.
`
}

func (c *daemonCmd) SetFlags(f *flag.FlagSet) {}

func (c *daemonCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, cfg, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	rebuilder, err := newRebuilder(s, cfg)
	if err != nil {
		return fail(err)
	}
	interval, err := cfg.Schedule.ParseInterval()
	if err != nil {
		return fail(err)
	}
	log.Printf("advancing snapshots every %s", interval)

	daemon := &networth.Daemon{Rebuilder: rebuilder, Interval: interval}
	if err := daemon.Run(ctx); err != nil && err != context.Canceled {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
