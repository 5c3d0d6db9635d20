// Package geocode resolves free-text addresses to coordinates.
package geocode

import (
	"context"
	"errors"
	"strings"

	"github.com/kass/go-geo-bearing/pkg/models"
)

var (
	// ErrNoMatch means the query was understood but nothing was found
	ErrNoMatch = errors.New("geocode: no match")
	// ErrEmptyQuery is returned for blank queries without calling out
	ErrEmptyQuery = errors.New("geocode: empty query")
)

// Geocoder turns an address or place name into a coordinate
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.GeoPoint, error)
}

// GeocoderFunc adapts a plain function to Geocoder
type GeocoderFunc func(ctx context.Context, query string) (models.GeoPoint, error)

func (f GeocoderFunc) Geocode(ctx context.Context, query string) (models.GeoPoint, error) {
	return f(ctx, query)
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
