// Package render turns a map view into GeoJSON, YAML, a Leaflet page or a
// terminal summary.
package render

import (
	"encoding/json"
	"io"

	"github.com/kass/go-geo-bearing/pkg/models"
	"gopkg.in/yaml.v3"
)

// FeatureCollection is a GeoJSON FeatureCollection
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// Feature is a single GeoJSON feature
type Feature struct {
	Type       string                 `json:"type" yaml:"type"`
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Geometry   Geometry               `json:"geometry" yaml:"geometry"`
}

// Geometry holds Point, LineString or Polygon coordinates in [lng, lat] order
type Geometry struct {
	Type        string      `json:"type" yaml:"type"`
	Coordinates interface{} `json:"coordinates" yaml:"coordinates"`
}

func position(p models.GeoPoint) []float64 {
	return []float64{p.Lng, p.Lat}
}

func positions(points []models.GeoPoint) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = position(p)
	}
	return out
}

// GeoJSON builds four features: origin marker, target marker, the radius
// circle as a closed Polygon and the bearing ray as a LineString.
func GeoJSON(view *models.MapView) FeatureCollection {
	ring := positions(view.Circle)
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}

	return FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{
			{
				Type: "Feature",
				Properties: map[string]interface{}{
					"role":    "origin",
					"name":    view.Label,
					"bearing": view.Bearing,
					"compass": view.Compass,
					"mode":    string(view.Mode),
				},
				Geometry: Geometry{Type: "Point", Coordinates: position(view.Origin)},
			},
			{
				Type: "Feature",
				Properties: map[string]interface{}{
					"role":       "target",
					"name":       view.TargetName,
					"distance_m": view.DistanceMeters,
				},
				Geometry: Geometry{Type: "Point", Coordinates: position(view.Target)},
			},
			{
				Type: "Feature",
				Properties: map[string]interface{}{
					"role":     "radius",
					"radius_m": view.CircleRadius,
				},
				Geometry: Geometry{Type: "Polygon", Coordinates: [][][]float64{ring}},
			},
			{
				Type: "Feature",
				Properties: map[string]interface{}{
					"role":     "ray",
					"bearing":  view.Bearing,
					"length_m": view.LineLength,
				},
				Geometry: Geometry{Type: "LineString", Coordinates: positions(view.Line[:])},
			},
		},
	}
}

// WriteJSON writes the view's GeoJSON FeatureCollection
func WriteJSON(w io.Writer, view *models.MapView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(GeoJSON(view))
}

// WriteYAML writes the view itself as YAML
func WriteYAML(w io.Writer, view *models.MapView) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return err
	}
	return enc.Close()
}
