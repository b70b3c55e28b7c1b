package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"AssetCompare/internal/compare"
	"AssetCompare/internal/model"
	"AssetCompare/internal/notifier"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner executes a comparison. *compare.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req compare.Request) (*model.ComparisonResult, error)
}

// Job describes the comparison re-run on every tick.
type Job struct {
	TickerA      string
	TickerB      string
	LookbackDays int
	Field        model.PriceField
	RiskFreeA    *float64
	RiskFreeB    *float64
}

// Request builds the request for a run ending at now. Non-empty tickers
// override the job's pair.
func (j Job) Request(now time.Time, tickerA, tickerB string) (compare.Request, error) {
	if tickerA == "" {
		tickerA = j.TickerA
	}
	if tickerB == "" {
		tickerB = j.TickerB
	}
	end := model.Day(now)
	start := end.AddDate(0, 0, -j.LookbackDays)
	return compare.NewRequest(tickerA, tickerB,
		compare.WithRange(start, end),
		compare.WithField(j.Field),
		compare.WithRiskFree(j.RiskFreeA, j.RiskFreeB),
	)
}

// Scheduler manages the cron task and on-demand comparisons.
// When runs overlap only the most recently started one is delivered.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier notifier.Notifier
	Job      Job
	Log      logrus.FieldLogger
	Ctx      context.Context

	now func() time.Time
	seq atomic.Uint64
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r Runner, n notifier.Notifier, job Job, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   r,
		Notifier: n,
		Job:      job,
		Log:      log,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// RegisterAll registers the periodic comparison.
func (s *Scheduler) RegisterAll(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("register comparison task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

func (s *Scheduler) tick() {
	if msg := s.RunNow(s.Ctx, "", ""); msg != "" {
		s.trySend(msg)
	}
}

// RunNow runs a comparison and returns the rendered message. An empty string
// means a newer run started meanwhile and this result was discarded.
func (s *Scheduler) RunNow(ctx context.Context, tickerA, tickerB string) string {
	id := s.seq.Add(1)
	log := s.Log.WithField("seq", id)

	req, err := s.Job.Request(s.now(), tickerA, tickerB)
	if err != nil {
		return notifier.FormatError(err)
	}
	log.WithField("request", req.String()).Info("running comparison")

	res, err := s.Runner.Run(ctx, req)
	if s.seq.Load() != id {
		log.Info("superseded by a newer run, result dropped")
		return ""
	}
	if err != nil {
		log.WithError(err).Error("comparison failed")
		return notifier.FormatError(err)
	}
	return notifier.FormatMessage(res)
}

// Superseded is the reply to a command whose result was dropped for a newer run.
const Superseded = "⏭ Superseded by a newer comparison, see the latest result."

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help()
	}
	switch fields[0] {
	case "/compare":
		var msg string
		switch len(fields) {
		case 1:
			msg = s.RunNow(ctx, "", "")
		case 3:
			msg = s.RunNow(ctx, strings.ToUpper(fields[1]), strings.ToUpper(fields[2]))
		default:
			return "Usage: /compare [TICKER_A TICKER_B]"
		}
		if msg == "" {
			return Superseded
		}
		return msg
	case "/pair":
		return fmt.Sprintf("Watching %s vs %s, %d days of %s prices",
			s.Job.TickerA, s.Job.TickerB, s.Job.LookbackDays, s.Job.Field)
	default:
		return help()
	}
}

func help() string {
	return "Available commands:\n• /compare\n• /compare TICKER_A TICKER_B\n• /pair"
}

func (s *Scheduler) trySend(text string) {
	var err error
	if tn, ok := s.Notifier.(*notifier.TelegramNotifier); ok {
		err = tn.SendWithRetry(s.Ctx, text, 3)
	} else {
		err = s.Notifier.Send(s.Ctx, text)
	}
	if err != nil {
		s.Log.WithError(err).Error("send notification")
	}
}
