package model

import (
	"fmt"
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar. A field the provider left
// empty is NaN.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Meta holds the static attributes a provider reports for a symbol.
type Meta struct {
	ShortName  string
	Currency   string
	TrailingPE *float64
}

// History is the raw provider answer for one symbol over a window.
type History struct {
	Symbol    string
	Bars      []OHLCV
	Dividends []Point
	Meta      Meta
}

// PriceField selects which bar value feeds the statistics.
type PriceField string

const (
	FieldOpen  PriceField = "Open"
	FieldHigh  PriceField = "High"
	FieldLow   PriceField = "Low"
	FieldClose PriceField = "Close"
)

// PriceFields lists the selectable fields, default first.
var PriceFields = []PriceField{FieldOpen, FieldClose, FieldHigh, FieldLow}

// ParsePriceField parses a field name case-insensitively. Empty means Open.
func ParsePriceField(s string) (PriceField, error) {
	if s == "" {
		return FieldOpen, nil
	}
	for _, f := range PriceFields {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown price field %q", s)
}

// Of extracts the field from a bar.
func (f PriceField) Of(b OHLCV) float64 {
	switch f {
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	default:
		return b.Open
	}
}
