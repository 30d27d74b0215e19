package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticketbot/internal/events"
)

// streamMaxLen caps the stream so it does not grow without bound.
const streamMaxLen = 10000

// StreamWriter is the subset of the redis client used by EventStream.
type StreamWriter interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// EventStream appends lifecycle events to a Redis stream for downstream
// consumers. It is write-only.
type EventStream struct {
	client     StreamWriter
	stream     string
	dispatcher events.Dispatcher
}

// NewEventStream creates a stream publisher.
func NewEventStream(client StreamWriter, stream string, dispatcher events.Dispatcher) *EventStream {
	return &EventStream{client: client, stream: stream, dispatcher: dispatcher}
}

// RegisterHandlers subscribes the stream to every event.
func (s *EventStream) RegisterHandlers() {
	s.dispatcher.SubscribeAll(s.Append)
}

// Append writes event to the stream.
func (s *EventStream) Append(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.Type, err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{
			"id":           event.ID,
			"type":         string(event.Type),
			"guild_id":     event.GuildID,
			"channel_id":   event.ChannelID,
			"channel_name": event.ChannelName,
			"actor_id":     event.Actor.UserID,
			"actor_name":   event.Actor.Username,
			"timestamp":    event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			"payload":      string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append %s to %s: %w", event.Type, s.stream, err)
	}
	return nil
}
