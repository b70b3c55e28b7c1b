package model

import (
	"fmt"
	"math"
	"time"
)

// Point is a single dated observation.
type Point struct {
	Date  time.Time
	Value float64
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AssetSeries is one asset's data over the requested window.
type AssetSeries struct {
	Symbol     string
	Name       string
	Currency   string
	Prices     []Point
	Dividends  []Point
	Volumes    []Point
	TrailingPE *float64
}

// NewAssetSeries projects a provider history onto the selected price field.
// Bars are expected in chronological order; bars missing the field are dropped.
func NewAssetSeries(h *History, field PriceField) AssetSeries {
	s := AssetSeries{
		Symbol:     h.Symbol,
		Name:       h.Meta.ShortName,
		Currency:   h.Meta.Currency,
		Dividends:  append([]Point(nil), h.Dividends...),
		TrailingPE: h.Meta.TrailingPE,
		Prices:     make([]Point, 0, len(h.Bars)),
		Volumes:    make([]Point, 0, len(h.Bars)),
	}
	if s.Name == "" {
		s.Name = h.Symbol
	}
	for _, b := range h.Bars {
		v := field.Of(b)
		if math.IsNaN(v) {
			continue
		}
		d := Day(b.Time)
		s.Prices = append(s.Prices, Point{Date: d, Value: v})
		s.Volumes = append(s.Volumes, Point{Date: d, Value: b.Volume})
	}
	return s
}

// Validate checks that price dates are strictly increasing and prices are
// finite and positive. A zero price would make the following return infinite.
func (s AssetSeries) Validate() error {
	for i, p := range s.Prices {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Value <= 0 {
			return fmt.Errorf("%s: invalid price %v on %s", s.Symbol, p.Value, p.Date.Format(time.DateOnly))
		}
		if i > 0 && !p.Date.After(s.Prices[i-1].Date) {
			return fmt.Errorf("%s: dates not strictly increasing at %s", s.Symbol, p.Date.Format(time.DateOnly))
		}
	}
	return nil
}

// PriceOn returns the price on the calendar day of d.
func (s AssetSeries) PriceOn(d time.Time) (float64, bool) {
	return Lookup(s.Prices, d)
}

// Lookup returns the value dated on the calendar day of d in a date-sorted slice.
func Lookup(points []Point, d time.Time) (float64, bool) {
	d = Day(d)
	lo, hi := 0, len(points)
	for lo < hi {
		mid := (lo + hi) / 2
		if Day(points[mid].Date).Before(d) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(points) && Day(points[lo].Date).Equal(d) {
		return points[lo].Value, true
	}
	return 0, false
}
