package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadPlaces(t *testing.T) {
	input := `id,name,lat,lng
bk, Brooklyn, 40.6782, -73.9442
jlm,Jerusalem,31.7780,35.2354
bad,Nowhere,95,0
nan,Broken,abc,0
`
	places, err := readPlaces(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, "bk", places[0].ID)
	assert.Equal(t, "Brooklyn", places[0].Name)
	assert.Equal(t, -73.9442, places[0].Location.Lng)
	assert.Equal(t, "Jerusalem", places[1].Name)
}

func TestReadPlacesWithoutHeader(t *testing.T) {
	places, err := readPlaces(strings.NewReader("tlv,Tel Aviv,32.0853,34.7818\n"), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, 32.0853, places[0].Location.Lat)
}

func TestReadPlacesWrongFieldCount(t *testing.T) {
	_, err := readPlaces(strings.NewReader("a,b,c\n"), zap.NewNop())
	assert.Error(t, err)
}

func TestGenerateRandomPlaces(t *testing.T) {
	places := generateRandomPlaces(1001, 4)
	require.Len(t, places, 1001)
	for _, p := range places {
		require.NotNil(t, p)
		assert.True(t, p.Location.Lat >= -85 && p.Location.Lat <= 85)
	}
}
