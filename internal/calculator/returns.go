package calculator

import (
	"fmt"
	"math"
	"time"

	"AssetCompare/internal/model"

	"gonum.org/v1/gonum/stat"
)

// PeriodicReturns computes price[i]/price[i-1]-1 for every i >= 1.
// Each return is dated on the later observation.
func PeriodicReturns(prices []model.Point) (model.ReturnSeries, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("periodic returns need 2 prices, got %d: %w", len(prices), model.ErrInsufficientData)
	}
	returns := make(model.ReturnSeries, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = model.Point{
			Date:  prices[i].Date,
			Value: prices[i].Value/prices[i-1].Value - 1,
		}
	}
	return returns, nil
}

// GeometricReturn compounds the returns over the window: prod(1+r) - 1.
func GeometricReturn(returns model.ReturnSeries) float64 {
	acc := 1.0
	for _, r := range returns {
		acc *= 1 + r.Value
	}
	return acc - 1
}

// ScaledStdDev returns the sample standard deviation of the returns multiplied
// by sqrt(len(returns)). The scaling ignores the sampling frequency; it is kept
// as is so Sharpe ratios stay comparable with earlier reports.
func ScaledStdDev(returns model.ReturnSeries) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}
	return stat.StdDev(values(returns), nil) * math.Sqrt(float64(n))
}

func values(points []model.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// DividendYield sums the dividends paid within [start, end] and divides by the first price.
func DividendYield(prices, dividends []model.Point, start, end time.Time) (float64, error) {
	if len(prices) == 0 {
		return 0, fmt.Errorf("dividend yield needs a first price: %w", model.ErrInsufficientData)
	}
	from, to := model.Day(start), model.Day(end)
	sum := 0.0
	for _, d := range dividends {
		day := model.Day(d.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		sum += d.Value
	}
	if sum == 0 {
		return 0, nil
	}
	first := prices[0].Value
	if first == 0 {
		return model.Undefined, nil
	}
	return sum / first, nil
}

// SharpeRatio returns (geo-rf)/stddev, or the undefined sentinel when the
// risk-free rate is absent or stddev is not positive.
func SharpeRatio(geo, stddev float64, riskFree *float64) float64 {
	if riskFree == nil || !(stddev > 0) {
		return model.Undefined
	}
	return (geo - *riskFree) / stddev
}

// Compute derives the full metrics snapshot for one asset.
func Compute(prices, dividends []model.Point, start, end time.Time, riskFree *float64) (model.AssetMetrics, error) {
	returns, err := PeriodicReturns(prices)
	if err != nil {
		return model.AssetMetrics{}, err
	}
	dy, err := DividendYield(prices, dividends, start, end)
	if err != nil {
		return model.AssetMetrics{}, err
	}
	high, low, err := PriceRange(prices)
	if err != nil {
		return model.AssetMetrics{}, err
	}
	pos, err := RangePosition(prices[len(prices)-1].Value, high, low)
	if err != nil {
		return model.AssetMetrics{}, err
	}
	geo := GeometricReturn(returns)
	sd := ScaledStdDev(returns)
	return model.AssetMetrics{
		Returns:         returns,
		BusinessDays:    len(returns),
		GeometricReturn: geo,
		StdDev:          sd,
		DividendYield:   dy,
		Sharpe:          SharpeRatio(geo, sd, riskFree),
		High:            high,
		Low:             low,
		Position:        pos,
	}, nil
}
