package geocode

import (
	"context"
	"errors"

	"github.com/kass/go-geo-bearing/pkg/models"
)

// Chain asks each geocoder in turn and returns the first match. A failing
// geocoder does not stop the chain; if nothing matches, the last real
// failure is returned, or ErrNoMatch when every geocoder simply found nothing.
type Chain []Geocoder

func (c Chain) Geocode(ctx context.Context, query string) (models.GeoPoint, error) {
	if normalizeQuery(query) == "" {
		return models.GeoPoint{}, ErrEmptyQuery
	}

	var lastErr error
	for _, g := range c {
		if err := ctx.Err(); err != nil {
			return models.GeoPoint{}, err
		}
		point, err := g.Geocode(ctx, query)
		if err == nil {
			return point, nil
		}
		if !errors.Is(err, ErrNoMatch) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return models.GeoPoint{}, lastErr
	}
	return models.GeoPoint{}, ErrNoMatch
}
