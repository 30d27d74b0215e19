package domain

import "time"

// AuditEntry is one recorded lifecycle event. Entries are written after the
// fact and never read back to decide whether a ticket is open.
type AuditEntry struct {
	ID          int64
	EventID     string
	EventType   string
	GuildID     string
	ChannelID   string
	ChannelName string
	ActorID     string
	ActorName   string
	Payload     []byte
	OccurredAt  time.Time
	RecordedAt  time.Time
}

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	ChannelID string
	EventType string
	Limit     int
}
