package postgis

import (
	"context"
	"os"
	"testing"

	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ geocode.Geocoder = (*PlaceStore)(nil)

func TestLikePattern(t *testing.T) {
	testCases := []struct {
		query    string
		expected string
		ok       bool
	}{
		{"Brooklyn", "%Brooklyn%", true},
		{"  New   York ", "%New York%", true},
		{"100%", `%100\%%`, true},
		{"snake_case", `%snake\_case%`, true},
		{`back\slash`, `%back\\slash%`, true},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			got, ok := likePattern(tc.query)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"host=localhost port=5432 user=geo password=secret dbname=geodb sslmode=disable",
		DSN("localhost", "geo", "secret", "geodb", 5432))
}

// Needs a PostGIS database: GEOBEARING_TEST_POSTGIS_DSN="host=... dbname=..."
func TestPlaceStore(t *testing.T) {
	dsn := os.Getenv("GEOBEARING_TEST_POSTGIS_DSN")
	if dsn == "" {
		t.Skip("GEOBEARING_TEST_POSTGIS_DSN not set")
	}

	store, err := NewPlaceStore(dsn)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.InitSchema(ctx))

	n, err := store.BulkInsertPlaces(ctx, []*models.Place{
		{ID: "bk", Name: "Brooklyn", Location: &models.GeoPoint{Lat: 40.6782, Lng: -73.9442}},
		{ID: "bkh", Name: "Brooklyn Heights", Location: &models.GeoPoint{Lat: 40.6959, Lng: -73.9956}},
		{ID: "jlm", Name: "Jerusalem", Location: &models.GeoPoint{Lat: 31.7780, Lng: 35.2354}},
		{ID: "none", Name: "Nowhere"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, store.CreateIndexes(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	p, err := store.Geocode(ctx, "brooklyn")
	require.NoError(t, err)
	assert.InDelta(t, 40.6782, p.Lat, 1e-9)

	_, err = store.Geocode(ctx, "Atlantis")
	assert.ErrorIs(t, err, geocode.ErrNoMatch)

	nearest, err := store.Nearest(ctx, models.GeoPoint{Lat: 31.8, Lng: 35.2}, 2)
	require.NoError(t, err)
	require.Len(t, nearest, 2)
	assert.Equal(t, "jlm", nearest[0].ID)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["row_count"])
}
