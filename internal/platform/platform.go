// Package platform declares the chat platform operations the bot relies on.
// The platform is the only source of truth for ticket state; implementations
// must not cache channel listings between calls.
package platform

import (
	"context"
	"errors"

	"github.com/spec-kit/ticketbot/internal/domain"
)

// ErrChannelNotFound is returned when a channel does not exist or is no
// longer accessible to the bot.
var ErrChannelNotFound = errors.New("channel not found")

// Platform is the subset of the chat platform API used by the services.
type Platform interface {
	GuildChannels(ctx context.Context, guildID string) ([]domain.Channel, error)
	Channel(ctx context.Context, channelID string) (*domain.Channel, error)
	GuildRoles(ctx context.Context, guildID string) ([]domain.Role, error)
	CreateChannel(ctx context.Context, guildID string, spec domain.ChannelSpec) (*domain.Channel, error)
	DeleteChannel(ctx context.Context, channelID, reason string) error
	SendMessage(ctx context.Context, channelID string, msg domain.OutgoingMessage) (*domain.Message, error)
	PinMessage(ctx context.Context, channelID, messageID string) error
}

// Responder answers the interaction an operation was triggered by. The first
// call is the interaction response; later calls are follow-ups.
type Responder interface {
	Respond(ctx context.Context, reply domain.Reply) error
}

// Deferrer is implemented by responders that can acknowledge an interaction
// before the reply is ready. The next Respond call then completes the
// acknowledgement, keeping its visibility.
type Deferrer interface {
	Defer(ctx context.Context, ephemeral bool) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, reply domain.Reply) error

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, reply domain.Reply) error {
	return f(ctx, reply)
}
