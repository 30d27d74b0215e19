package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketbot/internal/persistence"
)

// Pinger is a dependency health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness checks.
type HealthHandler struct {
	serviceName string
	version     string
	gateway     Pinger
	optional    map[string]Pinger
}

// NewHealthHandler returns a new handler instance. The gateway must be up
// for readiness; optional stores only count when they are configured.
func NewHealthHandler(serviceName, version string, gateway Pinger, postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		gateway:     gateway,
		optional:    map[string]Pinger{"postgres": postgres, "redis": redis},
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.gateway.Ping(ctx); err != nil {
		depStatus["discord"] = err.Error()
		ready = false
	} else {
		depStatus["discord"] = "ok"
	}

	for name, dep := range h.optional {
		if dep == nil {
			depStatus[name] = "disabled"
			continue
		}
		switch err := dep.Ping(ctx); {
		case errors.Is(err, persistence.ErrNotConfigured):
			depStatus[name] = "disabled"
		case err != nil:
			depStatus[name] = err.Error()
			ready = false
		default:
			depStatus[name] = "ok"
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
