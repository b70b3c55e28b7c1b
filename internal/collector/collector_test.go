package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"AssetCompare/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jan2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	feb1 = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

const chartJSON = `{"chart":{"result":[{
	"meta":{"symbol":"AAA","currency":"USD","shortName":"Triple A","gmtoffset":-18000},
	"timestamp":[1704205800,1704292200,1704378600],
	"events":{"dividends":{"1704292200":{"amount":0.5,"date":1704292200}}},
	"indicators":{"quote":[{
		"open":[100,null,121],
		"high":[101,null,122],
		"low":[99,null,120],
		"close":[100.5,null,121.5],
		"volume":[1000,null,3000]
	}]}
}],"error":null}}`

func TestYahooFetcher_FetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAA"):
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			assert.Equal(t, "div", r.URL.Query().Get("events"))
			fmt.Fprint(w, chartJSON)
		case r.URL.Path == "/v7/finance/quote":
			fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"AAA","shortName":"Triple A Inc","trailingPE":18.5}]}}`)
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/NOPE"):
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewYahooFetcher("", quietLogger())
	f.BaseURL = srv.URL

	h, err := f.FetchHistory(context.Background(), "AAA", jan2, feb1)
	require.NoError(t, err)
	assert.Equal(t, "Triple A", h.Meta.ShortName)
	assert.Equal(t, "USD", h.Meta.Currency)
	require.NotNil(t, h.Meta.TrailingPE)
	assert.Equal(t, 18.5, *h.Meta.TrailingPE)

	// null bar skipped
	require.Len(t, h.Bars, 2)
	assert.Equal(t, jan2, h.Bars[0].Time)
	assert.Equal(t, 100.0, h.Bars[0].Open)
	assert.Equal(t, 121.5, h.Bars[1].Close)
	assert.Equal(t, 3000.0, h.Bars[1].Volume)

	require.Len(t, h.Dividends, 1)
	assert.Equal(t, jan2.AddDate(0, 0, 1), h.Dividends[0].Date)
	assert.Equal(t, 0.5, h.Dividends[0].Value)

	_, err = f.FetchHistory(context.Background(), "NOPE", jan2, feb1)
	assert.True(t, errors.Is(err, model.ErrUnknownTicker))
}

const partialChartJSON = `{"chart":{"result":[{
	"meta":{"symbol":"AAA","currency":"USD","gmtoffset":-18000},
	"timestamp":[1704205800,1704292200,1704378600],
	"indicators":{"quote":[{
		"open":[100,null,121],
		"high":[101,111,122],
		"low":[99,109,120],
		"close":[100.5,110.5,121.5],
		"volume":[1000,null,3000]
	}]}
}],"error":null}}`

func TestYahooFetcher_PartiallyNullBar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v7/finance/quote" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, partialChartJSON)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", quietLogger())
	f.BaseURL = srv.URL

	h, err := f.FetchHistory(context.Background(), "AAA", jan2, feb1)
	require.NoError(t, err)
	require.Len(t, h.Bars, 3)
	assert.True(t, math.IsNaN(h.Bars[1].Open))
	assert.Equal(t, 0.0, h.Bars[1].Volume)

	open := model.NewAssetSeries(h, model.FieldOpen)
	require.NoError(t, open.Validate())
	require.Len(t, open.Prices, 2)
	assert.Equal(t, 100.0, open.Prices[0].Value)
	assert.Equal(t, 121.0, open.Prices[1].Value)

	closes := model.NewAssetSeries(h, model.FieldClose)
	assert.Len(t, closes.Prices, 3)
}

func TestYahooFetcher_DividendOnEndDay(t *testing.T) {
	end := jan2.AddDate(0, 0, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v7/finance/quote" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		assert.Equal(t, fmt.Sprint(end.AddDate(0, 0, 1).Unix()), r.URL.Query().Get("period2"))
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"symbol":"AAA","currency":"USD","gmtoffset":-18000},
			"timestamp":[1704205800,1704292200,1704378600],
			"events":{"dividends":{"1704378600":{"amount":0.7,"date":1704378600}}},
			"indicators":{"quote":[{"open":[1,2,3],"high":[1,2,3],"low":[1,2,3],"close":[1,2,3],"volume":[1,1,1]}]}
		}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", quietLogger())
	f.BaseURL = srv.URL

	h, err := f.FetchHistory(context.Background(), "AAA", jan2, end)
	require.NoError(t, err)
	require.Len(t, h.Bars, 2, "bar on the end day is outside the window")
	require.Len(t, h.Dividends, 1)
	assert.Equal(t, end, h.Dividends[0].Date)
}

func TestYahooFetcher_EmptyRangeIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v7/finance/quote" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"NEW","currency":"EUR"},"indicators":{"quote":[{}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", quietLogger())
	f.BaseURL = srv.URL

	h, err := f.FetchHistory(context.Background(), "NEW", jan2, feb1)
	require.NoError(t, err)
	assert.Empty(t, h.Bars)
	assert.Equal(t, "EUR", h.Meta.Currency)
	assert.Nil(t, h.Meta.TrailingPE)
}

func TestRESTFetcher_FetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if r.URL.Query().Get("symbol") == "NOPE" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Path {
		case "/api/v1/profile":
			fmt.Fprint(w, `{"short_name":"Bee","currency":"EUR","trailing_pe":null}`)
		case "/api/v1/history":
			assert.Equal(t, "2024-01-02", r.URL.Query().Get("from"))
			fmt.Fprintf(w, `[{"timestamp":%d,"open":55,"high":56,"low":54,"close":55.5,"volume":7},{"timestamp":%d,"open":50,"high":51,"low":49,"close":50.5,"volume":9}]`,
				jan2.AddDate(0, 0, 1).Unix(), jan2.Unix())
		case "/api/v1/dividends":
			fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	h, err := f.FetchHistory(context.Background(), "BBB", jan2, feb1)
	require.NoError(t, err)
	assert.Equal(t, "Bee", h.Meta.ShortName)
	assert.Nil(t, h.Meta.TrailingPE)
	require.Len(t, h.Bars, 2)
	assert.True(t, h.Bars[0].Time.Before(h.Bars[1].Time))
	assert.Equal(t, 50.0, h.Bars[0].Open)

	_, err = f.FetchHistory(context.Background(), "NOPE", jan2, feb1)
	assert.ErrorIs(t, err, model.ErrUnknownTicker)
}

func TestMockFetcher_Window(t *testing.T) {
	m := NewMockFetcher()
	h := m.Add("AAA", "Triple A", "USD", jan2, 1, 2, 3, 4)
	h.Dividends = []model.Point{
		{Date: jan2.AddDate(0, 0, 3), Value: 0.1},
		{Date: jan2.AddDate(0, 0, 4), Value: 0.2},
	}

	got, err := m.FetchHistory(context.Background(), "AAA", jan2.AddDate(0, 0, 1), jan2.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, got.Bars, 2)
	assert.Equal(t, 2.0, got.Bars[0].Close)
	// the end day's dividend is included, its bar is not
	require.Len(t, got.Dividends, 1)
	assert.Equal(t, 0.1, got.Dividends[0].Value)

	_, err = m.FetchHistory(context.Background(), "ZZZ", jan2, feb1)
	assert.ErrorIs(t, err, model.ErrUnknownTicker)
	assert.Equal(t, []string{"AAA", "ZZZ"}, m.Calls())
}

type countingFetcher struct {
	Fetcher
	n atomic.Int32
}

func (c *countingFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*model.History, error) {
	c.n.Add(1)
	return c.Fetcher.FetchHistory(ctx, symbol, start, end)
}

func TestCachedFetcher(t *testing.T) {
	m := NewMockFetcher()
	m.Add("AAA", "Triple A", "USD", jan2, 1, 2, 3)
	inner := &countingFetcher{Fetcher: m}

	c := NewCachedFetcher(inner, time.Minute, 100, quietLogger())
	assert.Equal(t, "mock", c.Name())

	for i := 0; i < 3; i++ {
		h, err := c.FetchHistory(context.Background(), "AAA", jan2, feb1)
		require.NoError(t, err)
		assert.Len(t, h.Bars, 3)
	}
	assert.Equal(t, int32(1), inner.n.Load())

	// a different window is a different entry
	_, err := c.FetchHistory(context.Background(), "AAA", jan2, feb1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.n.Load())

	// errors are not cached
	_, err = c.FetchHistory(context.Background(), "ZZZ", jan2, feb1)
	require.Error(t, err)
	_, err = c.FetchHistory(context.Background(), "ZZZ", jan2, feb1)
	require.Error(t, err)
	assert.Equal(t, int32(4), inner.n.Load())
}

func TestCachedFetcher_RateLimitHonoursContext(t *testing.T) {
	m := NewMockFetcher()
	m.Add("AAA", "Triple A", "USD", jan2, 1, 2, 3)
	c := NewCachedFetcher(m, 0, 0.001, quietLogger())

	_, err := c.FetchHistory(context.Background(), "AAA", jan2, feb1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.FetchHistory(ctx, "AAA", jan2, feb1)
	assert.Error(t, err)
}
