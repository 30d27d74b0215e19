package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/ticketbot/internal/domain"
)

// AuditEventResponse is one audit entry as served by the ops API.
type AuditEventResponse struct {
	EventID     string          `json:"event_id"`
	Type        string          `json:"type"`
	GuildID     string          `json:"guild_id"`
	ChannelID   string          `json:"channel_id"`
	ChannelName string          `json:"channel_name"`
	ActorID     string          `json:"actor_id"`
	ActorName   string          `json:"actor_name"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// AuditListQuery captures the /ops/events query string.
type AuditListQuery struct {
	ChannelID string `query:"channel_id"`
	Type      string `query:"type"`
	Limit     int    `query:"limit"`
}

// NewAuditEventResponse maps an entry.
func NewAuditEventResponse(e domain.AuditEntry) AuditEventResponse {
	resp := AuditEventResponse{
		EventID:     e.EventID,
		Type:        e.EventType,
		GuildID:     e.GuildID,
		ChannelID:   e.ChannelID,
		ChannelName: e.ChannelName,
		ActorID:     e.ActorID,
		ActorName:   e.ActorName,
		OccurredAt:  e.OccurredAt,
		RecordedAt:  e.RecordedAt,
	}
	if len(e.Payload) > 0 {
		resp.Payload = json.RawMessage(e.Payload)
	}
	return resp
}
