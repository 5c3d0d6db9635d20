package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/locate"
	"github.com/kass/go-geo-bearing/pkg/planner"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"go.uber.org/zap"
)

// APIError is the body of every error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// classify maps an error to its HTTP status and error code
func classify(err error) (int, string) {
	var fe *fiber.Error
	var verr *validate.ValidationError

	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, geocode.ErrEmptyQuery):
		return fiber.StatusBadRequest, "EMPTY_QUERY"
	case errors.Is(err, geocode.ErrNoMatch):
		return fiber.StatusNotFound, "NO_MATCH"
	case errors.Is(err, locate.ErrPermissionDenied):
		return fiber.StatusForbidden, "PERMISSION_DENIED"
	case errors.Is(err, locate.ErrTimeout), errors.Is(err, locate.ErrUnavailable):
		return fiber.StatusServiceUnavailable, "LOCATION_UNAVAILABLE"
	case errors.Is(err, planner.ErrNoGeocoder), errors.Is(err, planner.ErrNoLocator):
		return fiber.StatusServiceUnavailable, "NOT_CONFIGURED"
	case errors.As(err, &fe):
		switch fe.Code {
		case fiber.StatusNotFound:
			return fe.Code, "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			return fe.Code, "METHOD_NOT_ALLOWED"
		}
		if fe.Code < 500 {
			return fe.Code, "BAD_REQUEST"
		}
		return fe.Code, "INTERNAL_SERVER_ERROR"
	}
	return fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code := classify(err)

		if status >= 500 {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		} else {
			logger.Debug("HTTP client error",
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}

		return c.Status(status).JSON(errorResponse{
			Error: APIError{Code: code, Message: err.Error()},
		})
	}
}
