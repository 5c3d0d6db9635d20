package geocode

import (
	"context"
	"strings"
	"time"

	"github.com/kass/go-geo-bearing/pkg/models"
	"go.uber.org/zap"
)

// Store is a key/value cache for resolved coordinates
type Store interface {
	// Get reports found=false with a nil error on a miss
	Get(ctx context.Context, key string) (point models.GeoPoint, found bool, err error)
	Set(ctx context.Context, key string, point models.GeoPoint, ttl time.Duration) error
}

// Cached wraps a Geocoder with a Store. Only successful lookups are stored,
// and store failures never fail a lookup.
type Cached struct {
	next   Geocoder
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewCached(next Geocoder, store Store, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{next: next, store: store, ttl: ttl, logger: logger}
}

func cacheKey(query string) string {
	return "geocode:" + strings.ToLower(normalizeQuery(query))
}

func (c *Cached) Geocode(ctx context.Context, query string) (models.GeoPoint, error) {
	if normalizeQuery(query) == "" {
		return models.GeoPoint{}, ErrEmptyQuery
	}
	key := cacheKey(query)

	point, found, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("Geocode cache read failed", zap.String("key", key), zap.Error(err))
	case found:
		c.logger.Debug("Geocode cache hit", zap.String("key", key))
		return point, nil
	}

	point, err = c.next.Geocode(ctx, query)
	if err != nil {
		return models.GeoPoint{}, err
	}

	if err := c.store.Set(ctx, key, point, c.ttl); err != nil {
		c.logger.Warn("Geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
	return point, nil
}
