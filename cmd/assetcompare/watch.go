package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"AssetCompare/internal/compare"
	"AssetCompare/internal/model"
	"AssetCompare/internal/notifier"
	"AssetCompare/internal/scheduler"

	"github.com/google/subcommands"
)

type watchCmd struct {
	runOnStart bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "re-run the configured comparison on a schedule and report to Telegram" }
func (*watchCmd) Usage() string {
	return `assetcompare watch [-now]

  Runs analysis.ticker_a vs analysis.ticker_b on schedule.cron and sends the
  result to telegram.chat_id. Answers /compare and /pair commands.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.runOnStart, "now", os.Getenv("RUN_ON_START") == "true", "Run the comparison once at start")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(ctx context.Context, a *app) subcommands.ExitStatus {
		if err := a.cfg.ValidateNotifier(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		field, err := model.ParsePriceField(a.cfg.Analysis.PriceField)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log)
		job := scheduler.Job{
			TickerA:      a.cfg.Analysis.TickerA,
			TickerB:      a.cfg.Analysis.TickerB,
			LookbackDays: a.cfg.Analysis.LookbackDays,
			Field:        field,
			RiskFreeA:    a.cfg.Analysis.RiskFreeA,
			RiskFreeB:    a.cfg.Analysis.RiskFreeB,
		}
		sched := scheduler.NewScheduler(ctx, compare.NewPipeline(a.fetcher, a.dir, a.log), tn, job, a.log)
		if err := sched.RegisterAll(a.cfg.Schedule.Cron); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		a.log.Info("Telegram polling started")

		if c.runOnStart {
			a.log.Info("running comparison now")
			go func() {
				if msg := sched.RunNow(ctx, "", ""); msg != "" {
					if err := tn.SendWithRetry(ctx, msg, 3); err != nil {
						a.log.WithError(err).Error("send notification")
					}
				}
			}()
		}

		a.log.WithField("cron", a.cfg.Schedule.Cron).Info("watching, press Ctrl+C to stop")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		a.log.Info("shutdown signal received, stopping")
		cancel()
		return subcommands.ExitSuccess
	})(ctx)
}
