package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"AssetCompare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func series(values ...float64) []model.Point {
	pts := make([]model.Point, len(values))
	for i, v := range values {
		pts[i] = model.Point{Date: day0.AddDate(0, 0, i), Value: v}
	}
	return pts
}

func ptr(v float64) *float64 { return &v }

func TestPeriodicReturns_TooFewPrices(t *testing.T) {
	for _, prices := range [][]model.Point{nil, series(100)} {
		_, err := PeriodicReturns(prices)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInsufficientData))
	}
}

func TestPeriodicReturns_Values(t *testing.T) {
	r, err := PeriodicReturns(series(100, 110, 121))
	require.NoError(t, err)
	require.Len(t, r, 2)
	assert.InDelta(t, 0.10, r[0].Value, 1e-12)
	assert.InDelta(t, 0.10, r[1].Value, 1e-12)
	assert.Equal(t, day0.AddDate(0, 0, 1), r[0].Date)
}

func TestGeometricReturn_RoundTrip(t *testing.T) {
	cases := [][]float64{
		{100, 110, 121},
		{50, 55, 50.5},
		{1, 2, 0.5, 3, 3, 2.25},
		{42.1, 40.7},
	}
	for _, c := range cases {
		r, err := PeriodicReturns(series(c...))
		require.NoError(t, err)
		want := c[len(c)-1]/c[0] - 1
		assert.InDelta(t, want, GeometricReturn(r), 1e-12, "prices %v", c)
	}
}

func TestGeometricReturn_Scenario(t *testing.T) {
	r, _ := PeriodicReturns(series(100, 110, 121))
	assert.InDelta(t, 0.21, GeometricReturn(r), 1e-12)

	r, _ = PeriodicReturns(series(55, 60.5, 55.55))
	assert.InDelta(t, 0.01, GeometricReturn(r), 1e-12)
}

func TestScaledStdDev(t *testing.T) {
	// identical returns -> zero
	r, _ := PeriodicReturns(series(100, 110, 121, 133.1))
	assert.InDelta(t, 0, ScaledStdDev(r), 1e-12)

	// returns 0.1, -0.1: mean 0, sample var 0.02, sd*sqrt(2) = 0.2
	r, _ = PeriodicReturns(series(100, 110, 99))
	assert.InDelta(t, 0.2, ScaledStdDev(r), 1e-12)
	assert.GreaterOrEqual(t, ScaledStdDev(r), 0.0)

	r, _ = PeriodicReturns(series(100, 90))
	assert.Equal(t, 0.0, ScaledStdDev(r))

	// 1,2,3,4: sample sd sqrt(5/3), scaled by sqrt(4)
	assert.InDelta(t, 2*math.Sqrt(5.0/3), ScaledStdDev(model.ReturnSeries(series(1, 2, 3, 4))), 1e-12)
}

func TestDividendYield(t *testing.T) {
	prices := series(100, 101, 102)
	divs := []model.Point{
		{Date: day0.AddDate(0, 0, -1), Value: 5}, // before window
		{Date: day0.AddDate(0, 0, 1), Value: 1},
		{Date: day0.AddDate(0, 0, 2), Value: 0.5},
		{Date: day0.AddDate(0, 0, 9), Value: 7}, // after window
	}
	y, err := DividendYield(prices, divs, day0, day0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.InDelta(t, 0.015, y, 1e-12)

	y, err = DividendYield(prices, nil, day0, day0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 0.0, y)

	_, err = DividendYield(nil, divs, day0, day0.AddDate(0, 0, 2))
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestSharpeRatio(t *testing.T) {
	assert.True(t, model.IsUndefined(SharpeRatio(0.2, 0, ptr(0.01))))
	assert.True(t, model.IsUndefined(SharpeRatio(0.2, 0.1, nil)))

	s := SharpeRatio(0.21, 0.1, ptr(0.01))
	assert.False(t, math.IsNaN(s) || math.IsInf(s, 0))
	assert.InDelta(t, 2.0, s, 1e-12)
}

func TestCompute(t *testing.T) {
	prices := series(100, 110, 99, 108.9)
	m, err := Compute(prices, nil, day0, day0.AddDate(0, 0, 3), ptr(0))
	require.NoError(t, err)
	assert.Equal(t, 3, m.BusinessDays)
	assert.Len(t, m.Returns, 3)
	assert.InDelta(t, 0.089, m.GeometricReturn, 1e-12)
	assert.Greater(t, m.StdDev, 0.0)
	assert.InDelta(t, m.GeometricReturn/m.StdDev, m.Sharpe, 1e-12)
	assert.Equal(t, 110.0, m.High)
	assert.Equal(t, 99.0, m.Low)
	assert.InDelta(t, (108.9-99)/11, m.Position, 1e-12)

	flat, err := Compute(series(10, 10, 10), nil, day0, day0.AddDate(0, 0, 2), ptr(0.02))
	require.NoError(t, err)
	assert.Equal(t, 0.0, flat.StdDev)
	assert.True(t, model.IsUndefined(flat.Sharpe))

	_, err = Compute(series(10), nil, day0, day0, nil)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}
