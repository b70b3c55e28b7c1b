// Package fx rebases an asset's prices into another currency using a spot FX series.
package fx

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"AssetCompare/internal/collector"
	"AssetCompare/internal/model"

	"github.com/Rhymond/go-money"
	"github.com/sirupsen/logrus"
)

// Normalizer converts the second asset of a comparison into the first asset's currency.
type Normalizer struct {
	Fetcher collector.Fetcher
	Log     logrus.FieldLogger
}

// NewNormalizer creates a Normalizer backed by the given fetcher.
func NewNormalizer(f collector.Fetcher, log logrus.FieldLogger) *Normalizer {
	return &Normalizer{Fetcher: f, Log: log}
}

// Symbol returns the provider symbol quoting one unit of from in to, e.g. EURUSD=X.
func Symbol(from, to string) string {
	return strings.ToUpper(from) + strings.ToUpper(to) + "=X"
}

// SameCurrency reports whether two currency codes are identical. Codes are
// case-sensitive: GBp (pence) is not GBP.
func SameCurrency(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// minorUnits maps provider minor-unit codes to their ISO currency.
var minorUnits = map[string]string{
	"GBp": "GBP",
	"GBX": "GBP",
	"ZAc": "ZAR",
	"ILA": "ILS",
}

// Major resolves a code to its ISO currency and the factor converting one
// unit of code into that currency, e.g. GBp -> GBP, 0.01.
func Major(code string) (string, float64) {
	code = strings.TrimSpace(code)
	if iso, ok := minorUnits[code]; ok {
		return iso, 0.01
	}
	return strings.ToUpper(code), 1
}

// KnownCurrency reports whether code is an ISO-4217 currency. Minor-unit
// codes such as GBp are not.
func KnownCurrency(code string) bool {
	return code == strings.ToUpper(code) && money.GetCurrency(code) != nil
}

// Normalize returns b expressed in a's currency.
//
// When both currencies match, b is returned unchanged with a nil record.
// Minor units of the same currency (GBp against GBP) are rescaled by a fixed
// factor and the record has no symbol. Otherwise the spot series of the major
// currencies is fetched over [start, end) and left-joined on b's calendar:
// days without a quote get a NaN price. A failed or empty FX fetch yields
// model.ErrFxUnavailable.
func (n *Normalizer) Normalize(ctx context.Context, a, b model.AssetSeries, start, end time.Time, field model.PriceField) (model.AssetSeries, *model.FxRecord, error) {
	if SameCurrency(a.Currency, b.Currency) {
		return b, nil, nil
	}
	for _, code := range []string{a.Currency, b.Currency} {
		if !KnownCurrency(code) {
			n.Log.WithField("currency", code).Warn("currency is not a known ISO-4217 code")
		}
	}

	isoA, unitA := Major(a.Currency)
	isoB, unitB := Major(b.Currency)
	scale := unitB / unitA

	// same currency in different units: a fixed factor, no quotes needed
	if isoA == isoB {
		rates := make([]model.Point, len(b.Prices))
		for i, p := range b.Prices {
			rates[i] = model.Point{Date: p.Date, Value: scale}
		}
		out, _ := Convert(b, rates, a.Currency)
		out.Dividends = make([]model.Point, len(b.Dividends))
		for i, d := range b.Dividends {
			out.Dividends[i] = model.Point{Date: d.Date, Value: d.Value * scale}
		}
		n.Log.WithFields(logrus.Fields{"from": b.Currency, "to": a.Currency, "factor": scale}).Debug("rescaled minor currency unit")
		return out, &model.FxRecord{From: b.Currency, To: a.Currency, Rates: rates}, nil
	}

	symbol := Symbol(isoB, isoA)
	log := n.Log.WithField("fx_symbol", symbol)
	h, err := n.Fetcher.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		return model.AssetSeries{}, nil, fmt.Errorf("fetch %s: %v: %w", symbol, err, model.ErrFxUnavailable)
	}

	rates := make([]model.Point, 0, len(h.Bars))
	for _, bar := range h.Bars {
		v := field.Of(bar)
		if math.IsNaN(v) || v <= 0 {
			continue
		}
		rates = append(rates, model.Point{Date: model.Day(bar.Time), Value: v * scale})
	}
	if len(rates) == 0 {
		return model.AssetSeries{}, nil, fmt.Errorf("fetch %s: no quotes in range: %w", symbol, model.ErrFxUnavailable)
	}
	rec := &model.FxRecord{
		Symbol: symbol,
		From:   b.Currency,
		To:     a.Currency,
		Rates:  rates,
	}

	out, missing := Convert(b, rates, a.Currency)
	if missing > 0 {
		log.WithField("missing", missing).Warn("fx quotes missing for some trading days")
	}
	log.Debugf("converted %s from %s to %s", b.Symbol, b.Currency, a.Currency)
	return out, rec, nil
}

// Convert multiplies b's prices by the rate of the same calendar day and
// returns the converted series with the number of days lacking a rate.
// Dividends are converted when a same-day rate exists and dropped otherwise.
func Convert(b model.AssetSeries, rates []model.Point, currency string) (model.AssetSeries, int) {
	out := b
	out.Currency = currency
	out.Prices = make([]model.Point, len(b.Prices))
	missing := 0
	for i, p := range b.Prices {
		rate, ok := model.Lookup(rates, p.Date)
		if !ok {
			missing++
			out.Prices[i] = model.Point{Date: p.Date, Value: model.Undefined}
			continue
		}
		out.Prices[i] = model.Point{Date: p.Date, Value: p.Value * rate}
	}
	out.Dividends = nil
	for _, d := range b.Dividends {
		if rate, ok := model.Lookup(rates, d.Date); ok {
			out.Dividends = append(out.Dividends, model.Point{Date: d.Date, Value: d.Value * rate})
		}
	}
	return out, missing
}
