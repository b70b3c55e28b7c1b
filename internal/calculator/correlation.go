package calculator

import (
	"fmt"
	"math"

	"AssetCompare/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Correlation computes the Pearson coefficient of two return series over the
// dates they share. It returns the undefined sentinel when either leg has zero
// variance on the overlap.
func Correlation(a, b model.ReturnSeries) (float64, error) {
	var xs, ys []float64
	for _, p := range a {
		if v, ok := model.Lookup(b, p.Date); ok {
			xs = append(xs, p.Value)
			ys = append(ys, v)
		}
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("correlation needs 2 overlapping returns, got %d: %w", len(xs), model.ErrInsufficientData)
	}
	return pearson(xs, ys), nil
}

func pearson(xs, ys []float64) float64 {
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return model.Undefined
	}
	r := stat.Correlation(xs, ys, nil)
	// clamp rounding noise
	return math.Max(-1, math.Min(1, r))
}
