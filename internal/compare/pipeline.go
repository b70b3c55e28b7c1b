// Package compare runs a two-asset comparison: fetch, statistics, currency
// normalization and assembly of the chart tables.
package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AssetCompare/internal/calculator"
	"AssetCompare/internal/collector"
	"AssetCompare/internal/directory"
	"AssetCompare/internal/fx"
	"AssetCompare/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates one comparison run. It holds no per-run state and
// may be shared between goroutines.
type Pipeline struct {
	Fetcher    collector.Fetcher
	Normalizer *fx.Normalizer
	Directory  *directory.Directory
	Log        logrus.FieldLogger
}

// NewPipeline creates a Pipeline whose normalizer shares the same fetcher.
func NewPipeline(f collector.Fetcher, dir *directory.Directory, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		Fetcher:    f,
		Normalizer: fx.NewNormalizer(f, log),
		Directory:  dir,
		Log:        log,
	}
}

// Run executes the comparison. It either returns a complete result or an
// error wrapping one of the model sentinel errors; nothing is retried.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.ComparisonResult, error) {
	runID := uuid.New().String()
	log := p.Log.WithFields(logrus.Fields{"run_id": runID, "request": req.String()})

	if !req.Start().Before(req.End()) {
		return nil, fmt.Errorf("start %s must be before end %s: %w",
			req.Start().Format(time.DateOnly), req.End().Format(time.DateOnly), model.ErrInvalidRange)
	}

	started := time.Now()
	a, b, err := p.fetchBoth(ctx, req)
	if err != nil {
		log.WithError(err).Warn("fetch failed")
		return nil, err
	}

	metricsA, err := calculator.Compute(a.Prices, a.Dividends, req.Start(), req.End(), req.RiskFreeA())
	if err != nil {
		return nil, fmt.Errorf("%s metrics: %w", a.Symbol, err)
	}
	metricsB, err := calculator.Compute(b.Prices, b.Dividends, req.Start(), req.End(), req.RiskFreeB())
	if err != nil {
		return nil, fmt.Errorf("%s metrics: %w", b.Symbol, err)
	}

	corr, err := calculator.Correlation(metricsA.Returns, metricsB.Returns)
	if err != nil {
		return nil, fmt.Errorf("correlation %s/%s: %w", a.Symbol, b.Symbol, err)
	}

	bConv, rec, err := p.Normalizer.Normalize(ctx, a, b, req.Start(), req.End(), req.Field())
	if err != nil {
		log.WithError(err).Warn("currency normalization failed")
		return nil, err
	}

	res := &model.ComparisonResult{
		RunID:       runID,
		Start:       req.Start(),
		End:         req.End(),
		Field:       req.Field(),
		A:           a,
		B:           b,
		BConverted:  bConv,
		MetricsA:    metricsA,
		MetricsB:    metricsB,
		Correlation: corr,
		Fx:          rec,
	}
	nameA, nameB := columnNames(a, b)
	res.Prices = joinOn(nameA, nameB, a.Prices, bConv.Prices, 1)
	res.Volumes = joinOn(nameA, nameB, a.Volumes, b.Volumes, 1)
	// percentage returns indexed on a's return dates
	res.Returns = joinOn(nameA, nameB, metricsA.Returns, metricsB.Returns, 100)

	log.WithFields(logrus.Fields{
		"elapsed":     time.Since(started).Round(time.Millisecond),
		"correlation": corr,
		"fx":          rec != nil,
	}).Info("comparison complete")
	return res, nil
}

// fetchBoth fetches the two assets concurrently and joins before returning.
func (p *Pipeline) fetchBoth(ctx context.Context, req Request) (model.AssetSeries, model.AssetSeries, error) {
	var a, b model.AssetSeries
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = p.fetch(gctx, req.TickerA(), req)
		return err
	})
	g.Go(func() (err error) {
		b, err = p.fetch(gctx, req.TickerB(), req)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.AssetSeries{}, model.AssetSeries{}, err
	}
	return a, b, nil
}

func (p *Pipeline) fetch(ctx context.Context, symbol string, req Request) (model.AssetSeries, error) {
	h, err := p.Fetcher.FetchHistory(ctx, symbol, req.Start(), req.End())
	switch {
	case err == nil:
	case errors.Is(err, model.ErrUnknownTicker), ctx.Err() != nil:
		return model.AssetSeries{}, fmt.Errorf("fetch %s: %w", symbol, err)
	default:
		return model.AssetSeries{}, fmt.Errorf("fetch %s: %w: %w", symbol, err, model.ErrDataFetch)
	}
	if len(h.Bars) == 0 {
		return model.AssetSeries{}, fmt.Errorf("%s has no prices between %s and %s: %w", symbol,
			req.Start().Format(time.DateOnly), req.End().Format(time.DateOnly), model.ErrDataFetch)
	}
	s := model.NewAssetSeries(h, req.Field())
	if err := s.Validate(); err != nil {
		return model.AssetSeries{}, fmt.Errorf("%v: %w", err, model.ErrDataFetch)
	}
	s.Name = p.displayName(symbol, h.Meta.ShortName)
	return s, nil
}

// displayName prefers the directory, then the provider's short name, then the symbol.
func (p *Pipeline) displayName(symbol, shortName string) string {
	if n := p.Directory.Name(symbol); n != directory.Unknown {
		return n
	}
	if shortName != "" {
		return shortName
	}
	return symbol
}

// columnNames keys the chart tables. Equal display names are told apart by
// symbol, or by side when the same ticker is on both.
func columnNames(a, b model.AssetSeries) (string, string) {
	switch {
	case a.Name != b.Name:
		return a.Name, b.Name
	case a.Symbol != b.Symbol:
		return fmt.Sprintf("%s (%s)", a.Name, a.Symbol), fmt.Sprintf("%s (%s)", b.Name, b.Symbol)
	default:
		return a.Name + " (A)", b.Name + " (B)"
	}
}

// joinOn left-joins right onto left's dates, scaling every value.
func joinOn(nameA, nameB string, left, right []model.Point, scale float64) model.Table {
	t := model.Table{
		Columns: []string{nameA, nameB},
		Rows:    make([]model.Row, len(left)),
	}
	for i, p := range left {
		v := model.Undefined
		if r, ok := model.Lookup(right, p.Date); ok {
			v = r * scale
		}
		t.Rows[i] = model.Row{Date: p.Date, Values: []float64{p.Value * scale, v}}
	}
	return t
}
