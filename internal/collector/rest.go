package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"AssetCompare/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON market data API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of a history row.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type restDividend struct {
	Timestamp int64   `json:"timestamp"`
	Amount    float64 `json:"amount"`
}

type restProfile struct {
	ShortName  string   `json:"short_name"`
	Currency   string   `json:"currency"`
	TrailingPE *float64 `json:"trailing_pe"`
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*model.History, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var profile restProfile
	if err := f.getJSON(ctx, "/api/v1/profile", q, &profile); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	q.Set("from", start.Format(time.DateOnly))
	q.Set("to", end.Format(time.DateOnly))

	var bars []restBar
	if err := f.getJSON(ctx, "/api/v1/history", q, &bars); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	var divs []restDividend
	if err := f.getJSON(ctx, "/api/v1/dividends", q, &divs); err != nil {
		return nil, fmt.Errorf("fetch dividends: %w", err)
	}

	h := &model.History{
		Symbol: symbol,
		Meta: model.Meta{
			ShortName:  profile.ShortName,
			Currency:   profile.Currency,
			TrailingPE: profile.TrailingPE,
		},
		Bars: make([]model.OHLCV, 0, len(bars)),
	}
	for _, rb := range bars {
		day := model.Day(time.Unix(rb.Timestamp, 0).UTC())
		if !day.Before(end) {
			continue
		}
		h.Bars = append(h.Bars, model.OHLCV{
			Time:   day,
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		})
	}
	for _, d := range divs {
		h.Dividends = append(h.Dividends, model.Point{Date: model.Day(time.Unix(d.Timestamp, 0).UTC()), Value: d.Amount})
	}
	// Ensure chronological order
	sort.Slice(h.Bars, func(i, j int) bool { return h.Bars[i].Time.Before(h.Bars[j].Time) })
	sort.Slice(h.Dividends, func(i, j int) bool { return h.Dividends[i].Date.Before(h.Dividends[j].Date) })
	return h, nil
}

func (f *RESTFetcher) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := f.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", q.Get("symbol"), model.ErrUnknownTicker)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
