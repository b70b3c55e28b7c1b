package collector

import (
	"context"
	"time"

	"AssetCompare/internal/model"
)

// Fetcher defines the interface for fetching market data.
//
// FetchHistory returns daily bars in [start, end), dividends paid in
// [start, end] and the symbol's metadata. Unknown symbols fail with
// model.ErrUnknownTicker; a known symbol without trading in the window
// returns an empty Bars slice and no error.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*model.History, error)
	Name() string
}
