package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kass/go-geo-bearing/pkg/geo"
	"github.com/kass/go-geo-bearing/pkg/logger"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/planner"
	"github.com/kass/go-geo-bearing/pkg/rtree"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"go.uber.org/zap"
)

// placeResult is a gazetteer hit together with its own heading toward the reference
type placeResult struct {
	*models.Place
	DistanceMeters float64 `json:"distance_m,omitempty"`
	Bearing        float64 `json:"bearing"`
	Compass        string  `json:"compass"`
}

func main() {
	defaults := planner.DefaultOptions()

	var (
		indexFile = flag.String("i", "data/gazetteer.gob", "Gazetteer file path")
		queryType = flag.String("t", "nearest", "Query type: box, radius, nearest, name")
		// Box query parameters
		minLat = flag.Float64("min-lat", 0, "Minimum latitude (box query)")
		maxLat = flag.Float64("max-lat", 0, "Maximum latitude (box query)")
		minLng = flag.Float64("min-lng", 0, "Minimum longitude (box query)")
		maxLng = flag.Float64("max-lng", 0, "Maximum longitude (box query)")
		// Radius and nearest query parameters
		at     = flag.String("at", "", "Center as lat,lng (radius/nearest query)")
		radius = flag.Float64("radius", 10_000, "Radius in meters (radius query)")
		k      = flag.Int("k", 10, "Number of nearest places (nearest query)")
		name   = flag.String("name", "", "Place name (name query)")
		// Heading toward
		reference = flag.String("ref", fmt.Sprintf("%g,%g", defaults.Reference.Lat, defaults.Reference.Lng), "Reference point as lat,lng")
		mode      = flag.String("mode", string(models.GreatCircle), "great-circle or rhumb")
		// Output format
		outputJSON = flag.Bool("json", false, "Output results as JSON")
		limit      = flag.Int("limit", 100, "Maximum number of results to display")
		logLevel   = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	log, err := logger.New(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ref, err := parsePoint(*reference)
	if err != nil {
		log.Fatal("Invalid reference", zap.Error(err))
	}
	bearingMode, err := models.ParseBearingMode(*mode)
	if err != nil {
		log.Fatal("Invalid mode", zap.Error(err))
	}

	index := rtree.NewPlaceIndex()
	if err := index.LoadFromFile(*indexFile); err != nil {
		log.Fatal("Failed to load gazetteer", zap.Error(err))
	}
	log.Debug("Gazetteer loaded", zap.String("file", *indexFile), zap.Int64("places", index.Count()))

	var (
		results []*models.Place
		center  *models.GeoPoint
	)

	switch *queryType {
	case "box":
		box := models.BoundingBox{
			BottomLeft: models.GeoPoint{Lat: *minLat, Lng: *minLng},
			TopRight:   models.GeoPoint{Lat: *maxLat, Lng: *maxLng},
		}
		results, err = index.QueryBox(box)
		if err != nil {
			log.Fatal("Box query failed", zap.Error(err))
		}

	case "radius", "nearest":
		if *at == "" {
			log.Fatal("Query requires -at lat,lng", zap.String("type", *queryType))
		}
		c, err := parsePoint(*at)
		if err != nil {
			log.Fatal("Invalid center", zap.Error(err))
		}
		center = &c
		if *queryType == "radius" {
			results, err = index.QueryRadius(c, *radius)
			if err != nil {
				log.Fatal("Radius query failed", zap.Error(err))
			}
		} else {
			results = index.NearestPlaces(c, *k)
		}

	case "name":
		if p, ok := index.Lookup(*name); ok {
			results = []*models.Place{p}
		}

	default:
		log.Fatal("Unknown query type", zap.String("type", *queryType))
	}

	log.Info("Query done", zap.String("type", *queryType), zap.Int("results", len(results)))

	if len(results) > *limit {
		log.Info("Truncating results", zap.Int("limit", *limit))
		results = results[:*limit]
	}

	described := describe(results, center, ref, bearingMode)
	if *outputJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(described); err != nil {
			log.Fatal("Failed to encode results", zap.Error(err))
		}
		return
	}
	printResults(os.Stdout, described, center != nil)
}

// parsePoint reads lat,lng and rejects coordinates outside the valid ranges
func parsePoint(s string) (models.GeoPoint, error) {
	p, err := models.ParseGeoPoint(s)
	if err != nil {
		return models.GeoPoint{}, err
	}
	return p, validate.Point(p)
}

func describe(places []*models.Place, center *models.GeoPoint, ref models.GeoPoint, mode models.BearingMode) []placeResult {
	out := make([]placeResult, 0, len(places))
	for _, p := range places {
		b := geo.Bearing(mode, *p.Location, ref)
		r := placeResult{Place: p, Bearing: b, Compass: geo.CompassPoint(b)}
		if center != nil {
			r.DistanceMeters = geo.Distance(*center, *p.Location)
		}
		out = append(out, r)
	}
	return out
}

func printResults(w io.Writer, results []placeResult, withDistance bool) {
	for i, r := range results {
		loc := r.Location
		if withDistance {
			fmt.Fprintf(w, "%d. %s %s: (%.6f, %.6f) - %.0f m, faces %.1f° %s\n",
				i+1, r.ID, r.Name, loc.Lat, loc.Lng, r.DistanceMeters, r.Bearing, r.Compass)
		} else {
			fmt.Fprintf(w, "%d. %s %s: (%.6f, %.6f) - faces %.1f° %s\n",
				i+1, r.ID, r.Name, loc.Lat, loc.Lng, r.Bearing, r.Compass)
		}
	}
}
