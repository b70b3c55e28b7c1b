package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"AssetCompare/internal/model"

	"github.com/sirupsen/logrus"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	Log     logrus.FieldLogger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, log logrus.FieldLogger) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		Log:     log,
	}
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				Currency  string `json:"currency"`
				ShortName string `json:"shortName"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooQuote is the subset of the quote API used for valuation metadata.
type yahooQuote struct {
	QuoteResponse struct {
		Result []struct {
			Symbol     string   `json:"symbol"`
			ShortName  string   `json:"shortName"`
			TrailingPE *float64 `json:"trailingPE"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// at returns vals[i], or NaN when the provider sent null.
func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

func (f *YahooFetcher) get(ctx context.Context, u string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("yahoo read body: %w", err)
	}
	// the chart API reports unknown symbols as 404 with a JSON error body
	if err := json.Unmarshal(body, out); err != nil && resp.StatusCode == http.StatusOK {
		return resp.StatusCode, fmt.Errorf("yahoo decode: %w", err)
	}
	return resp.StatusCode, nil
}

// FetchHistory fetches daily bars, dividends and metadata for the window.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*model.History, error) {
	// one extra day so a dividend paid on end is reported; its bar is dropped below
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div",
		f.BaseURL, url.PathEscape(symbol), start.Unix(), end.AddDate(0, 0, 1).Unix())

	var chart yahooChart
	status, err := f.get(ctx, u, &chart)
	if err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			return nil, fmt.Errorf("yahoo %s: %s: %w", symbol, chart.Chart.Error.Description, model.ErrUnknownTicker)
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, model.ErrUnknownTicker)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", status)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: empty result: %w", symbol, model.ErrUnknownTicker)
	}

	result := chart.Chart.Result[0]
	h := &model.History{
		Symbol: symbol,
		Meta: model.Meta{
			ShortName: result.Meta.ShortName,
			Currency:  result.Meta.Currency,
		},
	}

	if len(result.Indicators.Quote) > 0 {
		quote := result.Indicators.Quote[0]
		h.Bars = make([]model.OHLCV, 0, len(result.Timestamp))
		for i, ts := range result.Timestamp {
			o, hi, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
			if math.IsNaN(o) && math.IsNaN(hi) && math.IsNaN(l) && math.IsNaN(c) {
				continue // skip null bars (holidays etc.)
			}
			day := model.Day(time.Unix(ts+result.Meta.GMTOffset, 0).UTC())
			if !day.Before(model.Day(end)) {
				continue
			}
			vol := at(quote.Volume, i)
			if math.IsNaN(vol) {
				vol = 0
			}
			h.Bars = append(h.Bars, model.OHLCV{
				Time:   day,
				Open:   o,
				High:   hi,
				Low:    l,
				Close:  c,
				Volume: vol,
			})
		}
	}
	sort.Slice(h.Bars, func(i, j int) bool { return h.Bars[i].Time.Before(h.Bars[j].Time) })

	for _, d := range result.Events.Dividends {
		day := model.Day(time.Unix(d.Date+result.Meta.GMTOffset, 0).UTC())
		if day.Before(model.Day(start)) || day.After(model.Day(end)) {
			continue
		}
		h.Dividends = append(h.Dividends, model.Point{Date: day, Value: d.Amount})
	}
	sort.Slice(h.Dividends, func(i, j int) bool { return h.Dividends[i].Date.Before(h.Dividends[j].Date) })

	// fx pairs have no valuation data
	if !strings.HasSuffix(symbol, "=X") {
		pe, name, err := f.fetchQuote(ctx, symbol)
		if err != nil {
			f.Log.WithField("symbol", symbol).Warnf("quote metadata unavailable: %v", err)
		} else {
			h.Meta.TrailingPE = pe
			if h.Meta.ShortName == "" {
				h.Meta.ShortName = name
			}
		}
	}
	return h, nil
}

func (f *YahooFetcher) fetchQuote(ctx context.Context, symbol string) (*float64, string, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", f.BaseURL, url.QueryEscape(symbol))
	var q yahooQuote
	status, err := f.get(ctx, u, &q)
	if err != nil {
		return nil, "", err
	}
	if status != http.StatusOK {
		return nil, "", fmt.Errorf("yahoo quote: status %d", status)
	}
	for _, r := range q.QuoteResponse.Result {
		if r.Symbol == symbol {
			return r.TrailingPE, r.ShortName, nil
		}
	}
	return nil, "", fmt.Errorf("yahoo quote: %s not in response", symbol)
}
