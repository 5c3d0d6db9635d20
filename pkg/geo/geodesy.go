// Package geo computes bearings and destination points on a spherical Earth.
// All functions are pure: degrees in, degrees out, radians in between.
// Inputs are not validated here; callers check ranges before calling in.
package geo

import (
	"math"

	"github.com/kass/go-geo-bearing/pkg/models"
)

// EarthRadius is the mean Earth radius in meters
const EarthRadius = 6371000.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// NormalizeBearing maps any angle in degrees into [0, 360)
func NormalizeBearing(deg float64) float64 {
	b := math.Mod(deg, 360)
	if b < 0 {
		b += 360
	}
	// -1e-20 + 360 rounds to exactly 360
	if b >= 360 || b == 0 {
		return 0
	}
	return b
}

// NormalizeLongitude maps any longitude in degrees into (-180, 180]
func NormalizeLongitude(lng float64) float64 {
	l := math.Mod(lng+180, 360)
	if l <= 0 {
		l += 360
	}
	// a tiny positive l still rounds to -180 after the shift
	if r := l - 180; r > -180 {
		return r
	}
	return 180
}

// InitialBearing returns the initial heading of the great-circle path from
// origin to destination. For coincident points the result is whatever
// atan2 gives for a zero-length path; it is deterministic and in range.
func InitialBearing(origin, destination models.GeoPoint) float64 {
	φ1 := toRadians(origin.Lat)
	φ2 := toRadians(destination.Lat)
	Δλ := toRadians(destination.Lng - origin.Lng)

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)

	return NormalizeBearing(toDegrees(math.Atan2(y, x)))
}

// RhumbBearing returns the constant compass heading of the loxodrome from
// origin to destination.
func RhumbBearing(origin, destination models.GeoPoint) float64 {
	φ1 := toRadians(origin.Lat)
	φ2 := toRadians(destination.Lat)

	// Mercator-stretched latitude difference
	Δψ := math.Log(math.Tan(math.Pi/4+φ2/2) / math.Tan(math.Pi/4+φ1/2))

	Δλ := shorterDeltaLongitude(toRadians(destination.Lng - origin.Lng))

	return NormalizeBearing(toDegrees(math.Atan2(Δλ, Δψ)))
}

// shorterDeltaLongitude reduces a longitude difference in radians to the
// shorter way round: |Δλ| > π becomes Δλ ∓ 2π depending on its sign.
func shorterDeltaLongitude(Δλ float64) float64 {
	Δλ = math.Mod(Δλ, 2*math.Pi)
	if math.Abs(Δλ) > math.Pi {
		if Δλ > 0 {
			Δλ = -(2*math.Pi - Δλ)
		} else {
			Δλ = 2*math.Pi + Δλ
		}
	}
	return Δλ
}

// Bearing dispatches to InitialBearing or RhumbBearing
func Bearing(mode models.BearingMode, origin, destination models.GeoPoint) float64 {
	if mode == models.Rhumb {
		return RhumbBearing(origin, destination)
	}
	return InitialBearing(origin, destination)
}

// DestinationPoint returns the point reached after travelling distanceMeters
// along the great circle leaving origin at the given initial bearing.
func DestinationPoint(origin models.GeoPoint, bearing, distanceMeters float64) models.GeoPoint {
	δ := distanceMeters / EarthRadius
	θ := toRadians(bearing)
	φ1 := toRadians(origin.Lat)
	λ1 := toRadians(origin.Lng)

	sinφ2 := math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ)
	sinφ2 = math.Max(-1, math.Min(1, sinφ2))
	φ2 := math.Asin(sinφ2)

	y := math.Sin(θ) * math.Sin(δ) * math.Cos(φ1)
	x := math.Cos(δ) - math.Sin(φ1)*sinφ2
	λ2 := λ1 + math.Atan2(y, x)

	return models.GeoPoint{
		Lat: toDegrees(φ2),
		Lng: NormalizeLongitude(toDegrees(λ2)),
	}
}

// BearingLine returns a two-point ray of lengthMeters starting at origin.
// The length is a display choice and unrelated to the distance to any target.
func BearingLine(origin models.GeoPoint, bearing, lengthMeters float64) [2]models.GeoPoint {
	return [2]models.GeoPoint{origin, DestinationPoint(origin, bearing, lengthMeters)}
}

// Distance calculates the haversine great-circle distance in meters
func Distance(a, b models.GeoPoint) float64 {
	φ1 := toRadians(a.Lat)
	φ2 := toRadians(b.Lat)
	Δφ := φ2 - φ1
	Δλ := toRadians(b.Lng - a.Lng)

	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*
			math.Sin(Δλ/2)*math.Sin(Δλ/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// RhumbDistance returns the length in meters of the loxodrome between a and b
func RhumbDistance(a, b models.GeoPoint) float64 {
	φ1 := toRadians(a.Lat)
	φ2 := toRadians(b.Lat)
	Δφ := φ2 - φ1
	Δψ := math.Log(math.Tan(math.Pi/4+φ2/2) / math.Tan(math.Pi/4+φ1/2))

	Δλ := shorterDeltaLongitude(toRadians(b.Lng - a.Lng))

	// q is ill-conditioned on east-west courses
	q := math.Cos(φ1)
	if math.Abs(Δψ) > 1e-12 {
		q = Δφ / Δψ
	}

	return EarthRadius * math.Sqrt(Δφ*Δφ+q*q*Δλ*Δλ)
}

// Circle approximates a circle of radiusMeters around center with the given
// number of vertices, starting due north and going clockwise. The ring is
// not closed; renderers that need a closed ring repeat the first vertex.
func Circle(center models.GeoPoint, radiusMeters float64, segments int) []models.GeoPoint {
	if segments < 3 {
		segments = 3
	}
	ring := make([]models.GeoPoint, segments)
	step := 360.0 / float64(segments)
	for i := 0; i < segments; i++ {
		ring[i] = DestinationPoint(center, float64(i)*step, radiusMeters)
	}
	return ring
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint converts a bearing to its 16-wind rose label
func CompassPoint(bearing float64) string {
	idx := int(math.Floor((NormalizeBearing(bearing)+11.25)/22.5)) % 16
	return compassPoints[idx]
}
