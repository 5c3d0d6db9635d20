// Package planner builds map views: given an origin it computes the heading
// toward the reference target plus the geometry needed to draw it.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kass/go-geo-bearing/pkg/geo"
	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/locate"
	"github.com/kass/go-geo-bearing/pkg/metrics"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"go.uber.org/zap"
)

const (
	sourcePoint   = "point"
	sourceAddress = "address"
	sourceCurrent = "current"

	// CurrentLocationLabel labels views built from the device position
	CurrentLocationLabel = "Current location"
)

var (
	ErrNoGeocoder = errors.New("planner: no geocoder configured")
	ErrNoLocator  = errors.New("planner: no locator configured")
)

type Options struct {
	Reference      models.GeoPoint
	ReferenceName  string
	LineLength     float64
	CircleRadius   float64
	CircleSegments int
	DefaultMode    models.BearingMode
}

// DefaultOptions aims at Jerusalem with a 5 km ray and a one mile circle
func DefaultOptions() Options {
	return Options{
		Reference:      models.GeoPoint{Lat: 31.7780, Lng: 35.2354},
		ReferenceName:  "Jerusalem",
		LineLength:     5000,
		CircleRadius:   1609.344,
		CircleSegments: 64,
		DefaultMode:    models.GreatCircle,
	}
}

type Planner struct {
	opts     Options
	geocoder geocode.Geocoder
	locator  locate.Locator
	logger   *zap.Logger
}

// New creates a planner. geocoder and locator may be nil when the caller
// never asks for address or current-position views.
func New(opts Options, geocoder geocode.Geocoder, locator locate.Locator, logger *zap.Logger) *Planner {
	defaults := DefaultOptions()
	if opts.LineLength <= 0 {
		opts.LineLength = defaults.LineLength
	}
	if opts.CircleRadius <= 0 {
		opts.CircleRadius = defaults.CircleRadius
	}
	if opts.CircleSegments < 3 {
		opts.CircleSegments = defaults.CircleSegments
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = defaults.DefaultMode
	}
	return &Planner{opts: opts, geocoder: geocoder, locator: locator, logger: logger}
}

func (p *Planner) Options() Options {
	return p.opts
}

// FromPoint builds the view for an explicit origin
func (p *Planner) FromPoint(origin models.GeoPoint, label string, mode models.BearingMode) (*models.MapView, error) {
	view, err := p.build(origin, label, mode)
	if err != nil {
		metrics.ViewErrors.WithLabelValues(sourcePoint, "invalid").Inc()
		return nil, err
	}
	metrics.ViewsBuilt.WithLabelValues(sourcePoint, string(view.Mode)).Inc()
	return view, nil
}

// FromAddress geocodes address and builds the view for the result
func (p *Planner) FromAddress(ctx context.Context, address string, mode models.BearingMode) (*models.MapView, error) {
	if p.geocoder == nil {
		return nil, ErrNoGeocoder
	}
	if _, err := p.resolveMode(mode); err != nil {
		metrics.ViewErrors.WithLabelValues(sourceAddress, "invalid").Inc()
		return nil, err
	}

	start := time.Now()
	origin, err := p.geocoder.Geocode(ctx, address)
	metrics.ObserveCollaborator("geocoder", start)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, geocode.ErrNoMatch):
			reason = "no_match"
		case errors.Is(err, geocode.ErrEmptyQuery):
			reason = "empty_query"
		}
		metrics.ViewErrors.WithLabelValues(sourceAddress, reason).Inc()
		p.logger.Debug("Geocoding failed", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}

	view, err := p.build(origin, address, mode)
	if err != nil {
		metrics.ViewErrors.WithLabelValues(sourceAddress, "invalid").Inc()
		return nil, err
	}
	metrics.ViewsBuilt.WithLabelValues(sourceAddress, string(view.Mode)).Inc()
	return view, nil
}

// FromCurrentPosition asks the locator for the device position
func (p *Planner) FromCurrentPosition(ctx context.Context, mode models.BearingMode) (*models.MapView, error) {
	if p.locator == nil {
		return nil, ErrNoLocator
	}
	if _, err := p.resolveMode(mode); err != nil {
		metrics.ViewErrors.WithLabelValues(sourceCurrent, "invalid").Inc()
		return nil, err
	}

	start := time.Now()
	origin, err := p.locator.Locate(ctx)
	metrics.ObserveCollaborator("locator", start)
	if err != nil {
		reason := "unavailable"
		switch {
		case errors.Is(err, locate.ErrPermissionDenied):
			reason = "permission_denied"
		case errors.Is(err, locate.ErrTimeout):
			reason = "timeout"
		}
		metrics.ViewErrors.WithLabelValues(sourceCurrent, reason).Inc()
		p.logger.Warn("Current position unavailable", zap.Error(err))
		return nil, fmt.Errorf("locate: %w", err)
	}

	view, err := p.build(origin, CurrentLocationLabel, mode)
	if err != nil {
		metrics.ViewErrors.WithLabelValues(sourceCurrent, "invalid").Inc()
		return nil, err
	}
	metrics.ViewsBuilt.WithLabelValues(sourceCurrent, string(view.Mode)).Inc()
	return view, nil
}

func (p *Planner) resolveMode(mode models.BearingMode) (models.BearingMode, error) {
	switch mode {
	case "":
		return p.opts.DefaultMode, nil
	case models.GreatCircle, models.Rhumb:
		return mode, nil
	}
	return "", &validate.ValidationError{Field: "mode", Value: string(mode), Rule: "oneof=great-circle rhumb"}
}

func (p *Planner) build(origin models.GeoPoint, label string, mode models.BearingMode) (*models.MapView, error) {
	mode, err := p.resolveMode(mode)
	if err != nil {
		return nil, err
	}
	if err := validate.Point(origin); err != nil {
		return nil, err
	}

	target := p.opts.Reference
	bearing := geo.Bearing(mode, origin, target)

	distance := geo.Distance(origin, target)
	if mode == models.Rhumb {
		distance = geo.RhumbDistance(origin, target)
	}

	view := &models.MapView{
		Origin:         origin,
		Label:          label,
		Target:         target,
		TargetName:     p.opts.ReferenceName,
		Mode:           mode,
		Bearing:        bearing,
		Compass:        geo.CompassPoint(bearing),
		DistanceMeters: distance,
		Line:           geo.BearingLine(origin, bearing, p.opts.LineLength),
		LineLength:     p.opts.LineLength,
		Circle:         geo.Circle(origin, p.opts.CircleRadius, p.opts.CircleSegments),
		CircleRadius:   p.opts.CircleRadius,
	}

	p.logger.Debug("Built map view",
		zap.String("label", label),
		zap.String("mode", string(mode)),
		zap.Float64("bearing", bearing),
		zap.Float64("distance_m", distance))

	return view, nil
}
