package mapbox

import (
	"context"
	"strings"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/lru"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/observability"
)

// CachedFinder wraps a PlaceFinder with an in-memory LRU cache keyed by the
// normalized query.
type CachedFinder struct {
	inner   domain.PlaceFinder
	cache   *lru.Cache[string, domain.Place]
	metrics *observability.Metrics
}

// NewCachedFinder creates a cache decorator around a finder.
func NewCachedFinder(inner domain.PlaceFinder, maxEntries int, metrics *observability.Metrics) *CachedFinder {
	return &CachedFinder{
		inner:   inner,
		cache:   lru.New[string, domain.Place](maxEntries, nil),
		metrics: metrics,
	}
}

func (c *CachedFinder) FindPlace(ctx context.Context, query string) (domain.Place, error) {
	key := cacheKey(query)
	if place, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return place, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	place, err := c.inner.FindPlace(ctx, query)
	if err != nil {
		return place, err
	}
	// Only cache hits so a transient "not found" can be retried.
	if place.Found() {
		c.cache.Put(key, place)
	}
	return place, nil
}

func cacheKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
