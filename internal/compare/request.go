package compare

import (
	"fmt"
	"strings"
	"time"

	"AssetCompare/internal/model"
)

// DefaultLookback is the window used when no range is given.
const DefaultLookback = 365 * 24 * time.Hour

// Request holds the parameters of one analysis run. It is immutable once built.
type Request struct {
	tickerA, tickerB     string
	start, end           time.Time
	field                model.PriceField
	riskFreeA, riskFreeB *float64
}

// Option configures a Request.
type Option func(*Request)

// WithRange sets the analysis window [start, end).
func WithRange(start, end time.Time) Option {
	return func(r *Request) {
		r.start = model.Day(start)
		r.end = model.Day(end)
	}
}

// WithField selects the price field the statistics run on.
func WithField(f model.PriceField) Option {
	return func(r *Request) { r.field = f }
}

// WithRiskFree sets the risk-free rate of each asset as a decimal. A nil rate
// leaves that asset's Sharpe ratio undefined.
func WithRiskFree(a, b *float64) Option {
	return func(r *Request) {
		r.riskFreeA = copyRate(a)
		r.riskFreeB = copyRate(b)
	}
}

func copyRate(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// NewRequest builds a Request for two tickers. Without options the window is
// the last year up to today and the field is Open.
func NewRequest(tickerA, tickerB string, opts ...Option) (Request, error) {
	today := model.Day(time.Now())
	r := Request{
		tickerA: strings.TrimSpace(tickerA),
		tickerB: strings.TrimSpace(tickerB),
		start:   today.Add(-DefaultLookback),
		end:     today,
		field:   model.FieldOpen,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.tickerA == "" || r.tickerB == "" {
		return Request{}, fmt.Errorf("two tickers are required, got %q and %q", tickerA, tickerB)
	}
	return r, nil
}

func (r Request) TickerA() string { return r.tickerA }
func (r Request) TickerB() string { return r.tickerB }
func (r Request) Start() time.Time { return r.start }
func (r Request) End() time.Time { return r.end }
func (r Request) Field() model.PriceField { return r.field }
func (r Request) RiskFreeA() *float64 { return copyRate(r.riskFreeA) }
func (r Request) RiskFreeB() *float64 { return copyRate(r.riskFreeB) }

// String describes the request for logs.
func (r Request) String() string {
	return fmt.Sprintf("%s vs %s %s..%s %s", r.tickerA, r.tickerB,
		r.start.Format(time.DateOnly), r.end.Format(time.DateOnly), r.field)
}
