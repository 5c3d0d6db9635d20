package render

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func brooklynView(t *testing.T) *models.MapView {
	t.Helper()
	p := planner.New(planner.DefaultOptions(), nil, nil, zap.NewNop())
	view, err := p.FromPoint(models.GeoPoint{Lat: 40.6782, Lng: -73.9442}, "Brooklyn", models.GreatCircle)
	require.NoError(t, err)
	return view
}

func TestGeoJSON(t *testing.T) {
	view := brooklynView(t)
	fc := GeoJSON(view)

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 4)

	roles := make([]string, len(fc.Features))
	for i, f := range fc.Features {
		roles[i] = f.Properties["role"].(string)
	}
	assert.Equal(t, []string{"origin", "target", "radius", "ray"}, roles)

	// [lng, lat]
	assert.Equal(t, []float64{-73.9442, 40.6782}, fc.Features[0].Geometry.Coordinates)
	assert.Equal(t, []float64{35.2354, 31.7780}, fc.Features[1].Geometry.Coordinates)

	polygon := fc.Features[2].Geometry
	assert.Equal(t, "Polygon", polygon.Type)
	ring := polygon.Coordinates.([][][]float64)[0]
	assert.Len(t, ring, len(view.Circle)+1)
	assert.Equal(t, ring[0], ring[len(ring)-1])

	line := fc.Features[3].Geometry
	assert.Equal(t, "LineString", line.Type)
	coords := line.Coordinates.([][]float64)
	require.Len(t, coords, 2)
	assert.Equal(t, []float64{view.Line[1].Lng, view.Line[1].Lat}, coords[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, brooklynView(t)))

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 4)
	assert.Equal(t, "LineString", decoded.Features[3].Geometry.Type)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, brooklynView(t)))

	out := buf.String()
	assert.Contains(t, out, "target_name: Jerusalem")
	assert.Contains(t, out, "mode: great-circle")

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.InDelta(t, 54.09, decoded["bearing"], 0.05)
}

func TestWriteHTML(t *testing.T) {
	view := brooklynView(t)
	view.Label = `<script>alert("x")</script>`

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, view))

	page := buf.String()
	assert.Contains(t, page, "leaflet.js")
	assert.Contains(t, page, `"FeatureCollection"`)
	assert.Contains(t, page, "Jerusalem")
	assert.NotContains(t, page, `<script>alert("x")</script>`)
}

func TestViewBoundsCoverCircleAndRay(t *testing.T) {
	view := brooklynView(t)
	b := viewBounds(view)

	within := func(p models.GeoPoint) bool {
		return p.Lat >= b[0][0] && p.Lat <= b[1][0] && p.Lng >= b[0][1] && p.Lng <= b[1][1]
	}
	for _, p := range view.Circle {
		assert.True(t, within(p), "circle point %v", p)
	}
	assert.True(t, within(view.Line[0]))
	assert.True(t, within(view.Line[1]), "ray end %v outside %v", view.Line[1], b)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, view))
	assert.Contains(t, buf.String(), "map.fitBounds([[")
	assert.NotContains(t, buf.String(), "data.features[2]")
}

func TestText(t *testing.T) {
	view := brooklynView(t)

	plain := Text(view, false)
	assert.Contains(t, plain, "Bearing to Jerusalem")
	assert.Contains(t, plain, "Brooklyn")
	assert.Contains(t, plain, "(NE)")
	assert.Contains(t, plain, "9167.6 km")
	assert.NotContains(t, plain, "\x1b[")

	colored := Text(view, true)
	assert.Contains(t, colored, "Bearing to Jerusalem")
	assert.True(t, strings.Count(colored, "\n") >= strings.Count(plain, "\n"))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0 m", FormatDistance(0))
	assert.Equal(t, "5000 m", FormatDistance(5000))
	assert.Equal(t, "10.0 km", FormatDistance(10_000))
	assert.Equal(t, "9167.6 km", FormatDistance(9_167_582))
}

func TestColorEnabled(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ColorEnabled(f.Fd()))
}
