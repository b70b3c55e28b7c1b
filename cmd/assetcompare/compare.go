package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"AssetCompare/internal/compare"
	"AssetCompare/internal/model"
	"AssetCompare/internal/notifier"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

type compareCmd struct {
	start    string
	end      string
	field    string
	riskFree [2]string
	raw      bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare two assets over a date range" }
func (*compareCmd) Usage() string {
	return `assetcompare compare [-start yyyy-mm-dd] [-end yyyy-mm-dd] [-field Open|High|Low|Close] [-rf-a r] [-rf-b r] [-raw] [<A> <B>]

  Compares asset B against asset A. B prices are converted into the currency
  of A when they differ. Tickers default to analysis.ticker_a and ticker_b.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "First day of the window (defaults to one year before end)")
	f.StringVar(&c.end, "end", "", "Last day of the window, exclusive (defaults to today)")
	f.StringVar(&c.field, "field", "", "Price field (defaults to analysis.price_field)")
	f.StringVar(&c.riskFree[0], "rf-a", "", "Risk-free rate for A, e.g. 0.04")
	f.StringVar(&c.riskFree[1], "rf-b", "", "Risk-free rate for B")
	f.BoolVar(&c.raw, "raw", false, "Print Markdown without terminal styling")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 && f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected zero or two tickers")
		return subcommands.ExitUsageError
	}
	return withApp(func(ctx context.Context, a *app) subcommands.ExitStatus {
		tickerA, tickerB := a.cfg.Analysis.TickerA, a.cfg.Analysis.TickerB
		if f.NArg() == 2 {
			tickerA, tickerB = f.Arg(0), f.Arg(1)
		}
		req, err := c.request(a, tickerA, tickerB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}

		res, err := compare.NewPipeline(a.fetcher, a.dir, a.log).Run(ctx, req)
		if err != nil {
			fmt.Fprintln(os.Stderr, notifier.FormatError(err))
			return subcommands.ExitFailure
		}
		c.render(notifier.FormatReport(res))
		return subcommands.ExitSuccess
	})(ctx)
}

func (c *compareCmd) request(a *app, tickerA, tickerB string) (compare.Request, error) {
	end := model.Day(time.Now())
	if c.end != "" {
		d, err := time.Parse(time.DateOnly, c.end)
		if err != nil {
			return compare.Request{}, fmt.Errorf("invalid -end: %w", err)
		}
		end = d
	}
	start := end.AddDate(0, 0, -a.cfg.Analysis.LookbackDays)
	if c.start != "" {
		d, err := time.Parse(time.DateOnly, c.start)
		if err != nil {
			return compare.Request{}, fmt.Errorf("invalid -start: %w", err)
		}
		start = d
	}

	fieldName := a.cfg.Analysis.PriceField
	if c.field != "" {
		fieldName = c.field
	}
	field, err := model.ParsePriceField(fieldName)
	if err != nil {
		return compare.Request{}, err
	}

	rf := [2]*float64{a.cfg.Analysis.RiskFreeA, a.cfg.Analysis.RiskFreeB}
	for i, s := range c.riskFree {
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return compare.Request{}, fmt.Errorf("invalid risk-free rate %q: %w", s, err)
		}
		rf[i] = &v
	}

	return compare.NewRequest(tickerA, tickerB,
		compare.WithRange(start, end),
		compare.WithField(field),
		compare.WithRiskFree(rf[0], rf[1]),
	)
}

func (c *compareCmd) render(md string) {
	if c.raw {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
