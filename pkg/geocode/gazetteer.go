package geocode

import (
	"context"

	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/rtree"
)

// Gazetteer geocodes against a local place index with no network access
type Gazetteer struct {
	index *rtree.PlaceIndex
}

func NewGazetteer(index *rtree.PlaceIndex) *Gazetteer {
	return &Gazetteer{index: index}
}

// LoadGazetteer reads a saved place index from disk
func LoadGazetteer(path string) (*Gazetteer, error) {
	index := rtree.NewPlaceIndex()
	if err := index.LoadFromFile(path); err != nil {
		return nil, err
	}
	return NewGazetteer(index), nil
}

func (g *Gazetteer) Geocode(ctx context.Context, query string) (models.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return models.GeoPoint{}, err
	}
	if normalizeQuery(query) == "" {
		return models.GeoPoint{}, ErrEmptyQuery
	}

	place, ok := g.index.Lookup(query)
	if !ok {
		return models.GeoPoint{}, ErrNoMatch
	}
	return *place.Location, nil
}

// Reverse returns the indexed place nearest to point
func (g *Gazetteer) Reverse(ctx context.Context, point models.GeoPoint) (*models.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nearest := g.index.NearestPlaces(point, 1)
	if len(nearest) == 0 {
		return nil, ErrNoMatch
	}
	return nearest[0], nil
}

func (g *Gazetteer) Index() *rtree.PlaceIndex {
	return g.index
}
