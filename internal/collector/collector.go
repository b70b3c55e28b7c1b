package collector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"AssetCompare/internal/model"
)

// MockFetcher serves fixed in-memory histories for development and testing.
type MockFetcher struct {
	Histories map[string]*model.History
	Errors    map[string]error

	mu    sync.Mutex
	calls []string
}

// NewMockFetcher creates an empty MockFetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Histories: make(map[string]*model.History),
		Errors:    make(map[string]error),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

// Add registers a daily price history starting at first, one bar per entry.
// The price is used for every OHLC field.
func (m *MockFetcher) Add(symbol, name, currency string, first time.Time, prices ...float64) *model.History {
	h := &model.History{
		Symbol: symbol,
		Meta:   model.Meta{ShortName: name, Currency: currency},
		Bars:   make([]model.OHLCV, len(prices)),
	}
	for i, p := range prices {
		h.Bars[i] = model.OHLCV{
			Time:   first.AddDate(0, 0, i),
			Open:   p,
			High:   p,
			Low:    p,
			Close:  p,
			Volume: 1000 * float64(i+1),
		}
	}
	m.Histories[symbol] = h
	return h
}

func (m *MockFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*model.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	h, ok := m.Histories[symbol]
	if !ok {
		return nil, fmt.Errorf("mock %s: %w", symbol, model.ErrUnknownTicker)
	}
	return Window(h, start, end), nil
}

// Calls returns the symbols requested so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Window returns a copy of h with bars in [start, end) and dividends in
// [start, end], sorted chronologically.
func Window(h *model.History, start, end time.Time) *model.History {
	out := &model.History{Symbol: h.Symbol, Meta: h.Meta}
	for _, b := range h.Bars {
		if !b.Time.Before(start) && b.Time.Before(end) {
			out.Bars = append(out.Bars, b)
		}
	}
	for _, d := range h.Dividends {
		if !d.Date.Before(start) && !d.Date.After(end) {
			out.Dividends = append(out.Dividends, d)
		}
	}
	sort.Slice(out.Bars, func(i, j int) bool { return out.Bars[i].Time.Before(out.Bars[j].Time) })
	sort.Slice(out.Dividends, func(i, j int) bool { return out.Dividends[i].Date.Before(out.Dividends[j].Date) })
	return out
}
