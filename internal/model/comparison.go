package model

import "time"

// FxRecord describes the conversion applied to the second asset.
type FxRecord struct {
	Symbol string // provider symbol, e.g. EURUSD=X; empty when only the unit differs (GBp/GBP)
	From   string
	To     string
	Rates  []Point
}

// Row is one dated line of a Table. Missing cells are NaN.
type Row struct {
	Date   time.Time
	Values []float64
}

// Table is a date-indexed chart table keyed by display name.
type Table struct {
	Columns []string
	Rows    []Row
}

// Column returns the values of the named column, or nil.
func (t Table) Column(name string) []float64 {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[idx]
	}
	return out
}

// ComparisonResult is everything the presentation layer needs for one run.
type ComparisonResult struct {
	RunID string
	Start time.Time
	End   time.Time
	Field PriceField

	A          AssetSeries
	B          AssetSeries
	BConverted AssetSeries // B expressed in A's currency; equal to B when no FX was needed

	MetricsA AssetMetrics
	MetricsB AssetMetrics

	Correlation float64 // NaN when undefined
	Fx          *FxRecord

	Prices  Table // A calendar, A currency
	Volumes Table // A calendar
	Returns Table // percent, A return dates
}

// RiskReturn is one bar of the risk versus return chart, in percent.
type RiskReturn struct {
	Name   string
	Risk   float64
	Return float64
}

// RiskReturn returns the risk versus return bars for both assets.
func (r *ComparisonResult) RiskReturn() []RiskReturn {
	return []RiskReturn{
		{Name: r.A.Name, Risk: r.MetricsA.StdDev * 100, Return: r.MetricsA.GeometricReturn * 100},
		{Name: r.B.Name, Risk: r.MetricsB.StdDev * 100, Return: r.MetricsB.GeometricReturn * 100},
	}
}
