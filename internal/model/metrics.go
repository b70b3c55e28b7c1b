package model

import "math"

// ReturnSeries holds periodic returns, each dated on the later observation.
type ReturnSeries []Point

// AssetMetrics is the per-asset statistics snapshot for the window.
// Sharpe is NaN when undefined.
type AssetMetrics struct {
	Returns         ReturnSeries
	BusinessDays    int
	GeometricReturn float64
	StdDev          float64 // sample stddev scaled by sqrt(len(Returns))
	DividendYield   float64
	Sharpe          float64
	High            float64
	Low             float64
	Position        float64 // last price within [Low, High], 0.0~1.0
}

// Undefined is the sentinel for statistics that cannot be computed meaningfully.
var Undefined = math.NaN()

// IsUndefined reports whether v is the undefined sentinel.
func IsUndefined(v float64) bool { return math.IsNaN(v) }
