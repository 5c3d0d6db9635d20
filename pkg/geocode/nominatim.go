package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"go.uber.org/zap"
)

// Nominatim queries an OpenStreetMap Nominatim search endpoint
type Nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *zap.Logger
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatim creates a client for the service at baseURL. Nominatim's
// usage policy requires an identifying User-Agent.
func NewNominatim(baseURL, userAgent string, timeout time.Duration, logger *zap.Logger) *Nominatim {
	return &Nominatim{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		logger:     logger,
	}
}

func (n *Nominatim) Geocode(ctx context.Context, query string) (models.GeoPoint, error) {
	query = normalizeQuery(query)
	if query == "" {
		return models.GeoPoint{}, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("q", query)
	endpoint := n.baseURL + "/search?" + params.Encode()

	n.logger.Debug("Calling Nominatim search", zap.String("query", query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error("Failed to execute request", zap.Error(err))
		return models.GeoPoint{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		n.logger.Error("Nominatim returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return models.GeoPoint{}, fmt.Errorf("nominatim error: status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		n.logger.Error("Failed to decode response", zap.Error(err))
		return models.GeoPoint{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		n.logger.Debug("Nominatim found nothing", zap.String("query", query))
		return models.GeoPoint{}, ErrNoMatch
	}

	point, err := results[0].point()
	if err != nil {
		return models.GeoPoint{}, err
	}

	n.logger.Debug("Nominatim search successful",
		zap.String("display_name", results[0].DisplayName),
		zap.Float64("lat", point.Lat),
		zap.Float64("lng", point.Lng))

	return point, nil
}

func (r nominatimResult) point() (models.GeoPoint, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("bad latitude %q: %w", r.Lat, err)
	}
	lng, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("bad longitude %q: %w", r.Lon, err)
	}
	p := models.GeoPoint{Lat: lat, Lng: lng}
	if err := validate.Point(p); err != nil {
		return models.GeoPoint{}, fmt.Errorf("nominatim returned %w", err)
	}
	return p, nil
}
