package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kass/go-geo-bearing/pkg/geo"
	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/planner"
	"github.com/kass/go-geo-bearing/pkg/render"
	"github.com/kass/go-geo-bearing/pkg/rtree"
	"go.uber.org/zap"
)

func main() {
	index := rtree.NewPlaceIndex()

	cities := []*models.Place{
		{ID: "NYC", Name: "New York", Location: &models.GeoPoint{Lat: 40.7128, Lng: -74.0060}},
		{ID: "BKN", Name: "Brooklyn", Location: &models.GeoPoint{Lat: 40.6782, Lng: -73.9442}},
		{ID: "LAX", Name: "Los Angeles", Location: &models.GeoPoint{Lat: 34.0522, Lng: -118.2437}},
		{ID: "CHI", Name: "Chicago", Location: &models.GeoPoint{Lat: 41.8781, Lng: -87.6298}},
		{ID: "LON", Name: "London", Location: &models.GeoPoint{Lat: 51.5074, Lng: -0.1278}},
		{ID: "CAI", Name: "Cairo", Location: &models.GeoPoint{Lat: 30.0444, Lng: 31.2357}},
		{ID: "SYD", Name: "Sydney", Location: &models.GeoPoint{Lat: -33.8688, Lng: 151.2093}},
		{ID: "TYO", Name: "Tokyo", Location: &models.GeoPoint{Lat: 35.6762, Lng: 139.6503}},
	}
	if err := index.IndexPlaces(cities); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Indexed %d places\n\n", index.Count())

	p := planner.New(planner.DefaultOptions(), geocode.NewGazetteer(index), nil, zap.NewNop())

	// Example 1: great-circle against rhumb bearing for every city
	fmt.Println("=== Bearings toward Jerusalem ===")
	for _, city := range index.Places() {
		gc, err := p.FromPoint(*city.Location, city.Name, models.GreatCircle)
		if err != nil {
			log.Fatal(err)
		}
		rh, err := p.FromPoint(*city.Location, city.Name, models.Rhumb)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  - %-12s great-circle %6.2f° %-3s  rhumb %6.2f° %-3s  %s\n",
			city.Name, gc.Bearing, gc.Compass, rh.Bearing, rh.Compass, render.FormatDistance(gc.DistanceMeters))
	}

	// Example 2: resolve a name through the gazetteer
	fmt.Println("\n=== Address lookup ===")
	view, err := p.FromAddress(context.Background(), "brooklyn", "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(render.Text(view, false))

	// Example 3: walk along the ray
	fmt.Println("\n=== Points along the ray from Brooklyn ===")
	for _, km := range []float64{1, 10, 100, 1000} {
		pt := geo.DestinationPoint(view.Origin, view.Bearing, km*1000)
		fmt.Printf("  %6.0f km: %s\n", km, pt)
	}

	// Example 4: places near the origin
	fmt.Println("\n=== Within 50 km of Brooklyn ===")
	nearby, err := index.QueryRadius(view.Origin, 50_000)
	if err != nil {
		log.Fatal(err)
	}
	for _, city := range nearby {
		fmt.Printf("  - %s: %s away\n", city.Name, render.FormatDistance(geo.Distance(view.Origin, *city.Location)))
	}

	// Example 5: write the map
	dir, err := os.MkdirTemp("", "geobearing")
	if err != nil {
		log.Fatal(err)
	}
	out := filepath.Join(dir, "brooklyn.html")
	f, err := os.Create(out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := render.WriteHTML(f, view); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nMap written to %s\n", out)
}
