package models

import (
	"fmt"
	"strconv"
	"strings"
)

// GeoPoint represents a geographic location in decimal degrees
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lng)
}

// ParseGeoPoint parses "lat,lng". Range checks are left to the caller.
func ParseGeoPoint(s string) (GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return GeoPoint{}, fmt.Errorf("point %q: want \"lat,lng\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("point %q: bad latitude: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("point %q: bad longitude: %w", s, err)
	}
	return GeoPoint{Lat: lat, Lng: lng}, nil
}

// Place represents a named gazetteer entry
type Place struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location *GeoPoint `json:"location"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft GeoPoint
	TopRight   GeoPoint
}

// BearingMode selects how the heading toward the target is computed
type BearingMode string

const (
	GreatCircle BearingMode = "great-circle"
	Rhumb       BearingMode = "rhumb"
)

// ParseBearingMode accepts the canonical mode names and a few common aliases.
// An empty string yields GreatCircle.
func ParseBearingMode(s string) (BearingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "great-circle", "greatcircle", "gc", "orthodrome":
		return GreatCircle, nil
	case "rhumb", "rhumb-line", "loxodrome":
		return Rhumb, nil
	}
	return "", fmt.Errorf("unknown bearing mode %q", s)
}

// MapView is everything a presentation layer needs to draw one origin:
// the radius circle, the directional ray and the reference target.
type MapView struct {
	Origin         GeoPoint    `json:"origin" yaml:"origin"`
	Label          string      `json:"label,omitempty" yaml:"label,omitempty"`
	Target         GeoPoint    `json:"target" yaml:"target"`
	TargetName     string      `json:"target_name" yaml:"target_name"`
	Mode           BearingMode `json:"mode" yaml:"mode"`
	Bearing        float64     `json:"bearing" yaml:"bearing"`
	Compass        string      `json:"compass" yaml:"compass"`
	DistanceMeters float64     `json:"distance_m" yaml:"distance_m"`
	Line           [2]GeoPoint `json:"line" yaml:"line"`
	LineLength     float64     `json:"line_length_m" yaml:"line_length_m"`
	Circle         []GeoPoint  `json:"circle" yaml:"circle"`
	CircleRadius   float64     `json:"circle_radius_m" yaml:"circle_radius_m"`
}
