// Package bootstrap builds the geocoder, locator and planner described by a
// loaded configuration. Every binary wires itself through here.
package bootstrap

import (
	"fmt"

	"github.com/kass/go-geo-bearing/pkg/config"
	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/locate"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/planner"
	"github.com/kass/go-geo-bearing/pkg/postgis"
	"go.uber.org/zap"
)

// Closer releases whatever a builder opened
type Closer func()

// Geocoder builds the configured geocoder, wrapped in a Redis cache when
// caching is enabled.
func Geocoder(cfg *config.Config, logger *zap.Logger) (geocode.Geocoder, Closer, error) {
	gc := cfg.Geocoder
	var closers []func() error

	nominatim := func() geocode.Geocoder {
		return geocode.NewNominatim(gc.BaseURL, gc.UserAgent, gc.Timeout, logger)
	}

	var g geocode.Geocoder
	switch gc.Provider {
	case "nominatim":
		g = nominatim()
	case "gazetteer":
		gz, err := geocode.LoadGazetteer(gc.GazetteerFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load gazetteer: %w", err)
		}
		g = gz
	case "postgis":
		store, err := postgis.NewPlaceStore(gc.PostGISDSN)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, store.Close)
		g = store
	case "chain":
		var chain geocode.Chain
		if gc.GazetteerFile != "" {
			if gz, err := geocode.LoadGazetteer(gc.GazetteerFile); err == nil {
				chain = append(chain, gz)
			} else {
				logger.Warn("Gazetteer unavailable, skipping", zap.String("file", gc.GazetteerFile), zap.Error(err))
			}
		}
		if gc.PostGISDSN != "" {
			if store, err := postgis.NewPlaceStore(gc.PostGISDSN); err == nil {
				closers = append(closers, store.Close)
				chain = append(chain, store)
			} else {
				logger.Warn("PostGIS unavailable, skipping", zap.Error(err))
			}
		}
		g = append(chain, nominatim())
	default:
		return nil, nil, fmt.Errorf("unknown geocoder provider %q", gc.Provider)
	}

	if cfg.Cache.Enabled {
		store, err := geocode.NewRedisStore(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, logger)
		if err != nil {
			logger.Warn("Geocode cache disabled", zap.Error(err))
		} else {
			closers = append(closers, store.Close)
			g = geocode.NewCached(g, store, cfg.Cache.TTL, logger)
		}
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("Close failed", zap.Error(err))
			}
		}
	}
	return g, closeAll, nil
}

// Locator builds the configured position source
func Locator(cfg *config.Config, logger *zap.Logger) (locate.Locator, error) {
	lc := cfg.Locator
	switch lc.Provider {
	case "static":
		return locate.Static{Point: models.GeoPoint{Lat: lc.Lat, Lng: lc.Lng}}, nil
	case "ip":
		return locate.NewIPLocator(lc.URL, lc.Timeout, logger), nil
	case "disabled":
		return locate.Disabled{}, nil
	}
	return nil, fmt.Errorf("unknown locator provider %q", lc.Provider)
}

// PlannerOptions maps the reference and display sections onto planner options
func PlannerOptions(cfg *config.Config) (planner.Options, error) {
	mode, err := models.ParseBearingMode(cfg.Display.Mode)
	if err != nil {
		return planner.Options{}, err
	}
	return planner.Options{
		Reference:      cfg.Reference.Point(),
		ReferenceName:  cfg.Reference.Name,
		LineLength:     cfg.Display.LineLength,
		CircleRadius:   cfg.Display.CircleRadius,
		CircleSegments: cfg.Display.CircleSegments,
		DefaultMode:    mode,
	}, nil
}

// Planner wires a planner with the configured geocoder and locator
func Planner(cfg *config.Config, logger *zap.Logger) (*planner.Planner, Closer, error) {
	opts, err := PlannerOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	geocoder, closeGeocoder, err := Geocoder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	locator, err := Locator(cfg, logger)
	if err != nil {
		closeGeocoder()
		return nil, nil, err
	}
	return planner.New(opts, geocoder, locator, logger), closeGeocoder, nil
}
