package compare

import (
	"testing"
	"time"

	"AssetCompare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_Defaults(t *testing.T) {
	req, err := NewRequest(" AAPL ", "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", req.TickerA())
	assert.Equal(t, model.FieldOpen, req.Field())
	assert.Equal(t, model.Day(time.Now()), req.End())
	assert.Equal(t, 365*24*time.Hour, req.End().Sub(req.Start()))
	assert.Nil(t, req.RiskFreeA())
	assert.Nil(t, req.RiskFreeB())
}

func TestNewRequest_Options(t *testing.T) {
	rf := 0.03
	start := time.Date(2023, 5, 1, 15, 4, 0, 0, time.UTC)
	req, err := NewRequest("A", "B",
		WithRange(start, start.AddDate(0, 6, 0)),
		WithField(model.FieldHigh),
		WithRiskFree(&rf, nil),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), req.Start())
	assert.Equal(t, model.FieldHigh, req.Field())

	// the request keeps its own copy
	rf = 1
	require.NotNil(t, req.RiskFreeA())
	assert.Equal(t, 0.03, *req.RiskFreeA())
	*req.RiskFreeA() = 5
	assert.Equal(t, 0.03, *req.RiskFreeA())
	assert.Contains(t, req.String(), "A vs B 2023-05-01..2023-11-01 High")
}

func TestNewRequest_MissingTicker(t *testing.T) {
	_, err := NewRequest("AAPL", "  ")
	assert.Error(t, err)
}
