package collector

import (
	"context"
	"fmt"
	"time"

	"AssetCompare/internal/model"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// CachedFetcher wraps a Fetcher with an in-memory TTL cache and a request rate limit.
// Cached histories are shared between callers and must not be mutated.
type CachedFetcher struct {
	next    Fetcher
	cache   *cache.Cache
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// NewCachedFetcher creates a CachedFetcher. A non-positive ttl disables caching,
// a non-positive rps disables rate limiting.
func NewCachedFetcher(next Fetcher, ttl time.Duration, rps float64, log logrus.FieldLogger) *CachedFetcher {
	c := &CachedFetcher{next: next, log: log}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

func (c *CachedFetcher) Name() string { return c.next.Name() }

func cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s-%s-%s", symbol, start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func (c *CachedFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*model.History, error) {
	key := cacheKey(symbol, start, end)
	if c.cache != nil {
		if h, found := c.cache.Get(key); found {
			c.log.WithField("symbol", symbol).Debug("history cache hit")
			return h.(*model.History), nil
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	h, err := c.next.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(key, h, cache.DefaultExpiration)
	}
	return h, nil
}
