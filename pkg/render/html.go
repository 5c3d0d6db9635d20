package render

import (
	"html/template"
	"io"
	"math"

	"github.com/kass/go-geo-bearing/pkg/models"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }
#info { position: absolute; top: 10px; right: 10px; z-index: 1000; background: #fff; padding: 8px 12px; font: 14px sans-serif; border-radius: 4px; }</style>
</head>
<body>
<div id="map"></div>
<div id="info">{{.Summary}}</div>
<script>
var data = {{.Data}};
var map = L.map('map');
var layer = L.geoJSON(data, {
  style: function (f) {
    return f.properties.role === 'ray' ? {color: '#d33', weight: 3} : {color: '#36c', weight: 2, fillOpacity: 0.1};
  },
  onEachFeature: function (f, l) {
    if (f.properties.name) { l.bindPopup(f.properties.name); }
  }
}).addTo(map);
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
map.fitBounds({{.Bounds}});
</script>
</body>
</html>
`))

type page struct {
	Title   string
	Summary string
	Data    FeatureCollection
	Bounds  [2][2]float64
}

// viewBounds is the [[south, west], [north, east]] box around the circle and the ray
func viewBounds(view *models.MapView) [2][2]float64 {
	points := append([]models.GeoPoint{view.Origin}, view.Circle...)
	points = append(points, view.Line[:]...)
	b := [2][2]float64{{points[0].Lat, points[0].Lng}, {points[0].Lat, points[0].Lng}}
	for _, p := range points[1:] {
		b[0][0] = math.Min(b[0][0], p.Lat)
		b[0][1] = math.Min(b[0][1], p.Lng)
		b[1][0] = math.Max(b[1][0], p.Lat)
		b[1][1] = math.Max(b[1][1], p.Lng)
	}
	return b
}

// WriteHTML writes a self-contained Leaflet page centred on the origin
func WriteHTML(w io.Writer, view *models.MapView) error {
	title := "Bearing to " + view.TargetName
	if view.Label != "" {
		title = view.Label + " → " + view.TargetName
	}
	return pageTemplate.Execute(w, page{
		Title:   title,
		Summary: Summary(view),
		Data:    GeoJSON(view),
		Bounds:  viewBounds(view),
	})
}
