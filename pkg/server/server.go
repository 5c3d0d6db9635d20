// Package server exposes the bearing engine and map views over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kass/go-geo-bearing/pkg/config"
	"github.com/kass/go-geo-bearing/pkg/metrics"
	"github.com/kass/go-geo-bearing/pkg/planner"
	"go.uber.org/zap"
)

type Server struct {
	app     *fiber.App
	planner *planner.Planner
	logger  *zap.Logger
}

func New(p *planner.Planner, cfg config.ServerConfig, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "go-geo-bearing",
		ReadTimeout:           time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler:          errorHandler(logger),
		DisableStartupMessage: true,
	})

	s := &Server{app: app, planner: p, logger: logger}
	s.setupMiddlewares()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	s.app.Use(metrics.Middleware())
	s.app.Use(requestLogger(s.logger))
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	s.app.Get("/metrics", metrics.Handler())

	api := s.app.Group("/api/v1")
	api.Get("/bearing", s.bearing)
	api.Get("/destination", s.destination)
	api.Get("/view", s.view)
	api.Get("/view/current", s.currentView)
}

// App exposes the fiber app for tests and embedding
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(addr string) error {
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		// write the error response now so the logged and measured status is final
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				return herr
			}
		}
		logger.Debug("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)))
		return nil
	}
}
