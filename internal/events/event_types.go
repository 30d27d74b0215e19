package events

import (
	"time"

	"github.com/spec-kit/ticketbot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened    EventType = "ticket.opened"
	EventTicketClaimed   EventType = "ticket.claimed"
	EventTicketClosed    EventType = "ticket.closed"
	EventBroadcastPosted EventType = "broadcast.posted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ActorFromUser builds event actor metadata.
func ActorFromUser(user domain.User) Actor {
	return Actor{UserID: user.ID, Username: user.Username}
}

// Event represents a lifecycle event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	GuildID     string      `json:"guild_id"`
	ChannelID   string      `json:"channel_id"`
	ChannelName string      `json:"channel_name"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload,omitempty"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	CategoryID string `json:"category_id"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Reason string `json:"reason"`
}

// BroadcastKind separates changelogs from announcements.
type BroadcastKind string

const (
	BroadcastChangelog    BroadcastKind = "changelog"
	BroadcastAnnouncement BroadcastKind = "announcement"
)

// BroadcastPostedPayload payload.
type BroadcastPostedPayload struct {
	Kind         BroadcastKind `json:"kind"`
	Version      string        `json:"version,omitempty"`
	Attachment   string        `json:"attachment,omitempty"`
	PingedRoleID string        `json:"pinged_role_id,omitempty"`
}
