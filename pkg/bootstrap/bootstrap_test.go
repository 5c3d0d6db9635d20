package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kass/go-geo-bearing/pkg/config"
	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/locate"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/rtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func writeGazetteer(t *testing.T) string {
	t.Helper()
	index := rtree.NewPlaceIndex()
	require.NoError(t, index.IndexPlaces([]*models.Place{
		{ID: "bk", Name: "Brooklyn", Location: &models.GeoPoint{Lat: 40.6782, Lng: -73.9442}},
	}))
	path := filepath.Join(t.TempDir(), "places.gob")
	require.NoError(t, index.SaveToFile(path))
	return path
}

func TestGeocoderProviders(t *testing.T) {
	logger := zap.NewNop()

	t.Run("nominatim", func(t *testing.T) {
		g, closer, err := Geocoder(defaultConfig(t), logger)
		require.NoError(t, err)
		defer closer()
		assert.IsType(t, &geocode.Nominatim{}, g)
	})

	t.Run("gazetteer", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Geocoder.Provider = "gazetteer"
		cfg.Geocoder.GazetteerFile = writeGazetteer(t)

		g, closer, err := Geocoder(cfg, logger)
		require.NoError(t, err)
		defer closer()

		p, err := g.Geocode(context.Background(), "brooklyn")
		require.NoError(t, err)
		assert.Equal(t, 40.6782, p.Lat)
	})

	t.Run("missing gazetteer", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Geocoder.Provider = "gazetteer"
		cfg.Geocoder.GazetteerFile = filepath.Join(t.TempDir(), "none.gob")
		_, _, err := Geocoder(cfg, logger)
		assert.Error(t, err)
	})

	t.Run("chain starts with the gazetteer", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Geocoder.Provider = "chain"
		cfg.Geocoder.GazetteerFile = writeGazetteer(t)

		g, closer, err := Geocoder(cfg, logger)
		require.NoError(t, err)
		defer closer()

		chain, ok := g.(geocode.Chain)
		require.True(t, ok)
		assert.Len(t, chain, 2)

		p, err := g.Geocode(context.Background(), "Brooklyn")
		require.NoError(t, err)
		assert.Equal(t, -73.9442, p.Lng)
	})

	t.Run("unreachable cache is skipped", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Cache.Enabled = true
		cfg.Cache.Addr = "127.0.0.1:1"

		g, closer, err := Geocoder(cfg, logger)
		require.NoError(t, err)
		defer closer()
		assert.IsType(t, &geocode.Nominatim{}, g)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Geocoder.Provider = "carrier-pigeon"
		_, _, err := Geocoder(cfg, logger)
		assert.Error(t, err)
	})
}

func TestLocatorProviders(t *testing.T) {
	cfg := defaultConfig(t)

	l, err := Locator(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &locate.IPLocator{}, l)

	cfg.Locator.Provider = "static"
	cfg.Locator.Lat, cfg.Locator.Lng = 40.6782, -73.9442
	l, err = Locator(cfg, zap.NewNop())
	require.NoError(t, err)
	p, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.GeoPoint{Lat: 40.6782, Lng: -73.9442}, p)

	cfg.Locator.Provider = "disabled"
	l, err = Locator(cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = l.Locate(context.Background())
	assert.ErrorIs(t, err, locate.ErrPermissionDenied)

	cfg.Locator.Provider = "gps"
	_, err = Locator(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestPlanner(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Display.Mode = "rhumb"
	cfg.Display.LineLength = 1234
	cfg.Locator.Provider = "static"

	p, closer, err := Planner(cfg, zap.NewNop())
	require.NoError(t, err)
	defer closer()

	opts := p.Options()
	assert.Equal(t, models.Rhumb, opts.DefaultMode)
	assert.Equal(t, 1234.0, opts.LineLength)
	assert.Equal(t, "Jerusalem", opts.ReferenceName)

	view, err := p.FromCurrentPosition(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.Rhumb, view.Mode)
}
