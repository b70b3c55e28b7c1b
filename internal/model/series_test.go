package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func TestNewAssetSeries_DropsBarsMissingTheField(t *testing.T) {
	h := &History{
		Symbol: "AAA",
		Meta:   Meta{Currency: "USD"},
		Bars: []OHLCV{
			{Time: day0, Open: 100, Close: 101, Volume: 10},
			{Time: day0.AddDate(0, 0, 1), Open: math.NaN(), Close: 102, Volume: 20},
			{Time: day0.AddDate(0, 0, 2), Open: 104, Close: 103, Volume: 30},
		},
	}
	s := NewAssetSeries(h, FieldOpen)
	assert.Equal(t, "AAA", s.Name)
	require.Len(t, s.Prices, 2)
	assert.Equal(t, day0.AddDate(0, 0, 2), s.Prices[1].Date)
	assert.Len(t, s.Volumes, 2)
	require.NoError(t, s.Validate())

	assert.Len(t, NewAssetSeries(h, FieldClose).Prices, 3)
}

func TestValidate(t *testing.T) {
	series := func(vals ...float64) AssetSeries {
		s := AssetSeries{Symbol: "AAA"}
		for i, v := range vals {
			s.Prices = append(s.Prices, Point{Date: day0.AddDate(0, 0, i), Value: v})
		}
		return s
	}
	assert.NoError(t, series(1, 2, 3).Validate())
	assert.Error(t, series(1, 0, 3).Validate())
	assert.Error(t, series(1, -2).Validate())
	assert.Error(t, series(1, math.NaN()).Validate())
	assert.Error(t, series(1, math.Inf(1)).Validate())

	dup := series(1, 2)
	dup.Prices[1].Date = day0
	assert.Error(t, dup.Validate())
}

func TestLookup(t *testing.T) {
	pts := []Point{{Date: day0, Value: 1}, {Date: day0.AddDate(0, 0, 2), Value: 3}}
	v, ok := Lookup(pts, day0.AddDate(0, 0, 2).Add(15*time.Hour))
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
	_, ok = Lookup(pts, day0.AddDate(0, 0, 1))
	assert.False(t, ok)
}
