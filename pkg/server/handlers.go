package server

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kass/go-geo-bearing/pkg/geo"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/render"
	"github.com/kass/go-geo-bearing/pkg/validate"
)

type bearingResponse struct {
	From           models.GeoPoint    `json:"from"`
	To             models.GeoPoint    `json:"to"`
	Mode           models.BearingMode `json:"mode"`
	Bearing        float64            `json:"bearing"`
	Compass        string             `json:"compass"`
	DistanceMeters float64            `json:"distance_m"`
}

type destinationResponse struct {
	Origin         models.GeoPoint `json:"origin"`
	Bearing        float64         `json:"bearing"`
	DistanceMeters float64         `json:"distance_m"`
	Destination    models.GeoPoint `json:"destination"`
}

func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, &validate.ValidationError{Field: name, Value: raw, Rule: "required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &validate.ValidationError{Field: name, Value: raw, Rule: "number"}
	}
	return v, nil
}

func queryPoint(c *fiber.Ctx, latKey, lngKey string) (models.GeoPoint, error) {
	lat, err := queryFloat(c, latKey)
	if err != nil {
		return models.GeoPoint{}, err
	}
	lng, err := queryFloat(c, lngKey)
	if err != nil {
		return models.GeoPoint{}, err
	}
	p := models.GeoPoint{Lat: lat, Lng: lng}
	if err := validate.Point(p); err != nil {
		var verr *validate.ValidationError
		if errors.As(err, &verr) {
			switch verr.Field {
			case "lat":
				verr.Field = latKey
			case "lng":
				verr.Field = lngKey
			}
		}
		return models.GeoPoint{}, err
	}
	return p, nil
}

// queryMode returns "" when no mode was given so the planner default applies
func queryMode(c *fiber.Ctx) (models.BearingMode, error) {
	raw := c.Query("mode")
	if raw == "" {
		return "", nil
	}
	mode, err := models.ParseBearingMode(raw)
	if err != nil {
		return "", &validate.ValidationError{Field: "mode", Value: raw, Rule: "oneof=great-circle rhumb"}
	}
	return mode, nil
}

// GET /api/v1/bearing?from_lat&from_lng&to_lat&to_lng&mode
func (s *Server) bearing(c *fiber.Ctx) error {
	from, err := queryPoint(c, "from_lat", "from_lng")
	if err != nil {
		return err
	}
	to, err := queryPoint(c, "to_lat", "to_lng")
	if err != nil {
		return err
	}
	mode, err := queryMode(c)
	if err != nil {
		return err
	}
	if mode == "" {
		mode = s.planner.Options().DefaultMode
	}

	b := geo.Bearing(mode, from, to)
	distance := geo.Distance(from, to)
	if mode == models.Rhumb {
		distance = geo.RhumbDistance(from, to)
	}

	return c.JSON(bearingResponse{
		From:           from,
		To:             to,
		Mode:           mode,
		Bearing:        b,
		Compass:        geo.CompassPoint(b),
		DistanceMeters: distance,
	})
}

// GET /api/v1/destination?lat&lng&bearing&distance
func (s *Server) destination(c *fiber.Ctx) error {
	origin, err := queryPoint(c, "lat", "lng")
	if err != nil {
		return err
	}
	b, err := queryFloat(c, "bearing")
	if err != nil {
		return err
	}
	if err := validate.Bearing(b); err != nil {
		return err
	}
	distance, err := queryFloat(c, "distance")
	if err != nil {
		return err
	}
	if err := validate.Distance("distance", distance); err != nil {
		return err
	}

	return c.JSON(destinationResponse{
		Origin:         origin,
		Bearing:        geo.NormalizeBearing(b),
		DistanceMeters: distance,
		Destination:    geo.DestinationPoint(origin, b, distance),
	})
}

// GET /api/v1/view?address=...|lat&lng&mode&format
func (s *Server) view(c *fiber.Ctx) error {
	mode, err := queryMode(c)
	if err != nil {
		return err
	}

	var view *models.MapView
	if address := c.Query("address"); address != "" {
		view, err = s.planner.FromAddress(c.UserContext(), address, mode)
	} else {
		var origin models.GeoPoint
		origin, err = queryPoint(c, "lat", "lng")
		if err != nil {
			return err
		}
		view, err = s.planner.FromPoint(origin, c.Query("label"), mode)
	}
	if err != nil {
		return err
	}
	return s.writeView(c, view)
}

// GET /api/v1/view/current?mode&format
func (s *Server) currentView(c *fiber.Ctx) error {
	mode, err := queryMode(c)
	if err != nil {
		return err
	}
	view, err := s.planner.FromCurrentPosition(c.UserContext(), mode)
	if err != nil {
		return err
	}
	return s.writeView(c, view)
}

func (s *Server) writeView(c *fiber.Ctx, view *models.MapView) error {
	switch format := c.Query("format", "geojson"); format {
	case "geojson":
		return c.JSON(render.GeoJSON(view), "application/geo+json")
	case "json":
		return c.JSON(view)
	case "yaml":
		c.Set(fiber.HeaderContentType, "application/yaml")
		return render.WriteYAML(c, view)
	case "html":
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return render.WriteHTML(c, view)
	default:
		return &validate.ValidationError{Field: "format", Value: format, Rule: "oneof=geojson json yaml html"}
	}
}
