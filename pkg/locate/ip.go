package locate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"go.uber.org/zap"
)

// IPLocator estimates position from the public IP using an ip-api.com
// style JSON endpoint.
type IPLocator struct {
	httpClient *http.Client
	url        string
	logger     *zap.Logger
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

func NewIPLocator(url string, timeout time.Duration, logger *zap.Logger) *IPLocator {
	return &IPLocator{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		logger:     logger,
	}
}

func (l *IPLocator) Locate(ctx context.Context) (models.GeoPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			l.logger.Warn("IP location timed out", zap.Error(err))
			return models.GeoPoint{}, ErrTimeout
		}
		l.logger.Error("Failed to execute request", zap.Error(err))
		return models.GeoPoint{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Error("IP location service returned error", zap.Int("status_code", resp.StatusCode))
		return models.GeoPoint{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if body.Status != "success" {
		l.logger.Warn("IP location failed", zap.String("message", body.Message))
		return models.GeoPoint{}, fmt.Errorf("%w: %s", ErrUnavailable, body.Message)
	}

	point := models.GeoPoint{Lat: body.Lat, Lng: body.Lon}
	if err := validate.Point(point); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	l.logger.Debug("IP location resolved",
		zap.String("city", body.City),
		zap.Float64("lat", point.Lat),
		zap.Float64("lng", point.Lng))

	return point, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
