package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type tickersCmd struct {
	filter string
}

func (*tickersCmd) Name() string     { return "tickers" }
func (*tickersCmd) Synopsis() string { return "list the tickers known to the directory" }
func (*tickersCmd) Usage() string {
	return `assetcompare tickers [-q text]

  Lists directory entries as "SYMBOL (Name)".
`
}

func (c *tickersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.filter, "q", "", "Only show entries containing text (case-insensitive)")
}

func (c *tickersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(_ context.Context, a *app) subcommands.ExitStatus {
		q := strings.ToLower(c.filter)
		for _, sym := range a.dir.Symbols() {
			label := a.dir.Label(sym)
			if q != "" && !strings.Contains(strings.ToLower(label), q) {
				continue
			}
			fmt.Println(label)
		}
		return subcommands.ExitSuccess
	})(ctx)
}
