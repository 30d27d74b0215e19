package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketbot/internal/api/http/handlers"
	"github.com/spec-kit/ticketbot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Ops           *handlers.OpsHandler
	OpsMiddleware *auth.OpsMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Ops.Metrics)

	ops := app.Group("/ops", cfg.OpsMiddleware.Handle)
	ops.Get("/events", cfg.Ops.Events)
}
