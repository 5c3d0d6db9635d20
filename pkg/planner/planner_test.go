package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/kass/go-geo-bearing/pkg/geo"
	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/locate"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var brooklyn = models.GeoPoint{Lat: 40.6782, Lng: -73.9442}

func newPlanner(g geocode.Geocoder, l locate.Locator) *Planner {
	return New(DefaultOptions(), g, l, zap.NewNop())
}

func brooklynGeocoder() geocode.Geocoder {
	return geocode.GeocoderFunc(func(_ context.Context, q string) (models.GeoPoint, error) {
		if q == "Brooklyn, NY" {
			return brooklyn, nil
		}
		return models.GeoPoint{}, geocode.ErrNoMatch
	})
}

func TestNewFillsDefaults(t *testing.T) {
	p := New(Options{Reference: models.GeoPoint{Lat: 1, Lng: 2}}, nil, nil, zap.NewNop())
	opts := p.Options()
	assert.Equal(t, 5000.0, opts.LineLength)
	assert.Equal(t, 1609.344, opts.CircleRadius)
	assert.Equal(t, 64, opts.CircleSegments)
	assert.Equal(t, models.GreatCircle, opts.DefaultMode)
	assert.Equal(t, models.GeoPoint{Lat: 1, Lng: 2}, opts.Reference)
}

func TestFromPoint(t *testing.T) {
	p := newPlanner(nil, nil)

	view, err := p.FromPoint(brooklyn, "Brooklyn", "")
	require.NoError(t, err)

	assert.Equal(t, models.GreatCircle, view.Mode)
	assert.Equal(t, "Jerusalem", view.TargetName)
	assert.InDelta(t, 54.09, view.Bearing, 0.05)
	assert.Equal(t, "NE", view.Compass)
	assert.InDelta(t, 9_167_582, view.DistanceMeters, 10)

	assert.Equal(t, brooklyn, view.Line[0])
	assert.InDelta(t, 5000, geo.Distance(view.Line[0], view.Line[1]), 1e-6)
	assert.InDelta(t, view.Bearing, geo.InitialBearing(view.Line[0], view.Line[1]), 1e-6)

	require.Len(t, view.Circle, 64)
	for _, v := range view.Circle {
		assert.InDelta(t, 1609.344, geo.Distance(brooklyn, v), 1e-6)
	}
}

func TestFromPointRhumb(t *testing.T) {
	view, err := newPlanner(nil, nil).FromPoint(brooklyn, "", models.Rhumb)
	require.NoError(t, err)
	assert.Equal(t, models.Rhumb, view.Mode)
	assert.InDelta(t, 95.78, view.Bearing, 0.05)
	assert.Greater(t, view.DistanceMeters, 9_167_582.0)
}

func TestFromPointValidation(t *testing.T) {
	p := newPlanner(nil, nil)

	testCases := []struct {
		name   string
		origin models.GeoPoint
		mode   models.BearingMode
		field  string
	}{
		{"latitude too high", models.GeoPoint{Lat: 91, Lng: 0}, "", "lat"},
		{"longitude too low", models.GeoPoint{Lat: 0, Lng: -181}, "", "lng"},
		{"unknown mode", brooklyn, "zigzag", "mode"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.FromPoint(tc.origin, "", tc.mode)
			require.Error(t, err)
			var verr *validate.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestFromAddress(t *testing.T) {
	p := newPlanner(brooklynGeocoder(), nil)
	ctx := context.Background()

	view, err := p.FromAddress(ctx, "Brooklyn, NY", models.GreatCircle)
	require.NoError(t, err)
	assert.Equal(t, brooklyn, view.Origin)
	assert.Equal(t, "Brooklyn, NY", view.Label)

	_, err = p.FromAddress(ctx, "Atlantis", "")
	assert.ErrorIs(t, err, geocode.ErrNoMatch)

	_, err = p.FromAddress(ctx, "Brooklyn, NY", "zigzag")
	assert.True(t, validate.IsValidationError(err))

	_, err = newPlanner(nil, nil).FromAddress(ctx, "Brooklyn, NY", "")
	assert.ErrorIs(t, err, ErrNoGeocoder)
}

func TestFromAddressRejectsBadGeocoderOutput(t *testing.T) {
	bad := geocode.GeocoderFunc(func(context.Context, string) (models.GeoPoint, error) {
		return models.GeoPoint{Lat: 200}, nil
	})
	_, err := newPlanner(bad, nil).FromAddress(context.Background(), "x", "")
	assert.True(t, validate.IsValidationError(err))
}

func TestFromCurrentPosition(t *testing.T) {
	ctx := context.Background()

	view, err := newPlanner(nil, locate.Static{Point: brooklyn}).FromCurrentPosition(ctx, models.Rhumb)
	require.NoError(t, err)
	assert.Equal(t, brooklyn, view.Origin)
	assert.Equal(t, CurrentLocationLabel, view.Label)
	assert.Equal(t, models.Rhumb, view.Mode)

	_, err = newPlanner(nil, locate.Disabled{}).FromCurrentPosition(ctx, "")
	assert.ErrorIs(t, err, locate.ErrPermissionDenied)

	_, err = newPlanner(nil, nil).FromCurrentPosition(ctx, "")
	assert.ErrorIs(t, err, ErrNoLocator)
}
