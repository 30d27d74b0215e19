package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketbot/internal/api/dto"
	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/observability"
)

// AuditLister reads the audit read-model.
type AuditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

// OpsHandler serves counters and the audit listing.
type OpsHandler struct {
	metrics *observability.Metrics
	audit   AuditLister
}

// NewOpsHandler constructs handler. audit may be nil when no database is
// configured.
func NewOpsHandler(metrics *observability.Metrics, audit AuditLister) *OpsHandler {
	return &OpsHandler{metrics: metrics, audit: audit}
}

// Metrics GET /metrics.
func (h *OpsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}

// Events GET /ops/events.
func (h *OpsHandler) Events(c *fiber.Ctx) error {
	if h.audit == nil {
		return fiber.NewError(http.StatusNotFound, "audit log disabled")
	}
	var q dto.AuditListQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid query")
	}
	entries, err := h.audit.List(c.UserContext(), domain.AuditFilter{
		ChannelID: q.ChannelID,
		EventType: q.Type,
		Limit:     q.Limit,
	})
	if err != nil {
		return err
	}
	items := make([]dto.AuditEventResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewAuditEventResponse(e))
	}
	return c.JSON(fiber.Map{"data": items})
}
