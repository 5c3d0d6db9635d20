// Package locate reports the device's current position.
package locate

import (
	"context"
	"errors"

	"github.com/kass/go-geo-bearing/pkg/models"
)

var (
	ErrPermissionDenied = errors.New("locate: permission denied")
	ErrTimeout          = errors.New("locate: timed out")
	ErrUnavailable      = errors.New("locate: position unavailable")
)

// Locator yields the current position or one of the errors above
type Locator interface {
	Locate(ctx context.Context) (models.GeoPoint, error)
}

// Static always reports the same configured position
type Static struct {
	Point models.GeoPoint
}

func (s Static) Locate(ctx context.Context) (models.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return models.GeoPoint{}, contextError(err)
	}
	return s.Point, nil
}

// Disabled behaves like a user who refused location access
type Disabled struct{}

func (Disabled) Locate(context.Context) (models.GeoPoint, error) {
	return models.GeoPoint{}, ErrPermissionDenied
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
