// Package rtree implements an R-Tree backed gazetteer of named places used
// for offline geocoding and nearby-place lookups.
package rtree

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/go-geo-bearing/pkg/geo"
	"github.com/kass/go-geo-bearing/pkg/models"
)

const (
	tolerance   = 0.0001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialPlace wraps a place to implement rtreego.Spatial interface
type spatialPlace struct {
	*models.Place
	rect *rtreego.Rect
}

func (sp *spatialPlace) Bounds() *rtreego.Rect {
	return sp.rect
}

// PlaceIndex is a thread-safe gazetteer indexed by location and by name
type PlaceIndex struct {
	tree      *rtreego.Rtree
	byName    map[string]*models.Place
	places    []*models.Place
	mu        sync.RWMutex
	itemCount atomic.Int64
}

// NewPlaceIndex creates an empty gazetteer
func NewPlaceIndex() *PlaceIndex {
	return &PlaceIndex{
		tree:   rtreego.NewTree(dimensions, minChildren, maxChildren),
		byName: make(map[string]*models.Place),
	}
}

// normalizeName folds case and collapses whitespace
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// IndexPlaces adds places to the index. Places without a location are
// skipped; a later place with the same name replaces the earlier one for
// name lookups.
func (g *PlaceIndex) IndexPlaces(places []*models.Place) error {
	if len(places) == 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	count := int64(0)
	for _, place := range places {
		if place == nil || place.Location == nil {
			continue
		}

		p := rtreego.Point{place.Location.Lat, place.Location.Lng}
		g.tree.Insert(&spatialPlace{place, p.ToRect(tolerance)})
		g.places = append(g.places, place)
		if key := normalizeName(place.Name); key != "" {
			g.byName[key] = place
		}
		count++
	}
	g.itemCount.Add(count)
	return nil
}

// Lookup finds a place by name. An exact (case-insensitive) match wins;
// otherwise the shortest name containing the query is returned.
func (g *PlaceIndex) Lookup(name string) (*models.Place, bool) {
	key := normalizeName(name)
	if key == "" {
		return nil, false
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if place, ok := g.byName[key]; ok {
		return place, true
	}

	var best *models.Place
	var bestKey string
	for candidate, place := range g.byName {
		if !strings.Contains(candidate, key) {
			continue
		}
		if best == nil || len(candidate) < len(bestKey) ||
			(len(candidate) == len(bestKey) && candidate < bestKey) {
			best, bestKey = place, candidate
		}
	}
	return best, best != nil
}

// QueryBox returns all places within the given bounding box
func (g *PlaceIndex) QueryBox(box models.BoundingBox) ([]*models.Place, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	bounds, err := rtreego.NewRect(
		rtreego.Point{box.BottomLeft.Lat, box.BottomLeft.Lng},
		[]float64{
			box.TopRight.Lat - box.BottomLeft.Lat,
			box.TopRight.Lng - box.BottomLeft.Lng,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	results := g.tree.SearchIntersect(bounds)

	places := make([]*models.Place, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialPlace)
		if !ok || item.Place == nil {
			continue
		}

		// Strict boundary check
		loc := item.Location
		if loc.Lat >= box.BottomLeft.Lat && loc.Lat <= box.TopRight.Lat &&
			loc.Lng >= box.BottomLeft.Lng && loc.Lng <= box.TopRight.Lng {
			places = append(places, item.Place)
		}
	}

	return places, nil
}

// QueryRadius returns all places within radiusMeters of center, nearest first
func (g *PlaceIndex) QueryRadius(center models.GeoPoint, radiusMeters float64) ([]*models.Place, error) {
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("invalid radius %v", radiusMeters)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var candidates []rtreego.Spatial
	for _, bounds := range radiusRects(center, radiusMeters) {
		candidates = append(candidates, g.tree.SearchIntersect(bounds)...)
	}

	hits := make([]rankedPlace, 0, len(candidates))
	for _, result := range candidates {
		item, ok := result.(*spatialPlace)
		if !ok || item.Place == nil {
			continue
		}
		if d := geo.Distance(center, *item.Location); d <= radiusMeters {
			hits = append(hits, rankedPlace{item.Place, d})
		}
	}

	return sortRanked(hits, len(hits)), nil
}

// NearestPlaces returns the k places closest to center by great-circle distance
func (g *PlaceIndex) NearestPlaces(center models.GeoPoint, k int) []*models.Place {
	if k <= 0 {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	// The tree ranks in planar degrees, so over-fetch and re-rank. A second
	// search from the center shifted by 360° finds places across the antimeridian.
	shifted := center.Lng - 360
	if center.Lng < 0 {
		shifted = center.Lng + 360
	}
	n := k*4 + 8
	candidates := g.tree.NearestNeighbors(n, rtreego.Point{center.Lat, center.Lng})
	candidates = append(candidates, g.tree.NearestNeighbors(n, rtreego.Point{center.Lat, shifted})...)

	seen := make(map[*models.Place]bool, len(candidates))
	ranked := make([]rankedPlace, 0, len(candidates))
	for _, result := range candidates {
		item, ok := result.(*spatialPlace)
		if !ok || item.Place == nil || seen[item.Place] {
			continue
		}
		seen[item.Place] = true
		ranked = append(ranked, rankedPlace{item.Place, geo.Distance(center, *item.Location)})
	}

	return sortRanked(ranked, k)
}

// Count returns the number of indexed places
func (g *PlaceIndex) Count() int64 {
	return g.itemCount.Load()
}

// Places returns a snapshot of every indexed place in insertion order
func (g *PlaceIndex) Places() []*models.Place {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*models.Place, len(g.places))
	copy(out, g.places)
	return out
}

// Clear removes all places from the index
func (g *PlaceIndex) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	g.byName = make(map[string]*models.Place)
	g.places = nil
	g.itemCount.Store(0)
}

type rankedPlace struct {
	place    *models.Place
	distance float64
}

func sortRanked(ranked []rankedPlace, k int) []*models.Place {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})
	if len(ranked) < k {
		k = len(ranked)
	}
	places := make([]*models.Place, k)
	for i := 0; i < k; i++ {
		places[i] = ranked[i].place
	}
	return places
}

// radiusRects returns the degree-space rectangles covering a circle of
// radiusMeters around center, split in two when it crosses the antimeridian.
func radiusRects(center models.GeoPoint, radiusMeters float64) []*rtreego.Rect {
	latDeg := radiusMeters / geo.EarthRadius * 180 / math.Pi

	minLat := math.Max(center.Lat-latDeg, -90)
	maxLat := math.Min(center.Lat+latDeg, 90)

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	lngDeg := 180.0
	if minLat > -90 && maxLat < 90 && cosLat > 1e-9 {
		// widest point of the circle is poleward of center
		widest := math.Max(math.Abs(minLat), math.Abs(maxLat))
		lngDeg = math.Min(180, latDeg/math.Cos(widest*math.Pi/180))
	}

	spans := [][2]float64{{center.Lng - lngDeg, center.Lng + lngDeg}}
	switch {
	case lngDeg >= 180:
		spans = [][2]float64{{-180, 180}}
	case spans[0][0] < -180:
		spans = [][2]float64{{-180, spans[0][1]}, {spans[0][0] + 360, 180}}
	case spans[0][1] > 180:
		spans = [][2]float64{{spans[0][0], 180}, {-180, spans[0][1] - 360}}
	}

	rects := make([]*rtreego.Rect, 0, len(spans))
	for _, s := range spans {
		r, err := rtreego.NewRect(
			rtreego.Point{minLat, s[0]},
			[]float64{math.Max(maxLat-minLat, tolerance), math.Max(s[1]-s[0], tolerance)},
		)
		if err == nil {
			rects = append(rects, r)
		}
	}
	return rects
}
