package service

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/events"
	"github.com/spec-kit/ticketbot/internal/platform"
)

// NotificationService mirrors ticket lifecycle events into the ticket log channel.
type NotificationService struct {
	dispatcher   events.Dispatcher
	platform     platform.Platform
	clock        clockwork.Clock
	logger       *zap.Logger
	logChannelID string
}

// NewNotificationService creates the service. An empty logChannelID
// disables log notices.
func NewNotificationService(dispatcher events.Dispatcher, p platform.Platform, clock clockwork.Clock, logger *zap.Logger, logChannelID string) *NotificationService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher:   dispatcher,
		platform:     p,
		clock:        clock,
		logger:       logger.Named("notifications"),
		logChannelID: logChannelID,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketOpened, n.handleTicketOpened)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
	n.dispatcher.SubscribeAll(n.traceEvent)
}

func (n *NotificationService) handleTicketOpened(ctx context.Context, event events.Event) error {
	owner := domain.User{ID: event.Actor.UserID, Username: event.Actor.Username}
	return n.sendLog(ctx, event, ticketOpenedLogEmbed(owner, event.ChannelID, n.clock.Now().UTC()))
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	closer := domain.User{ID: event.Actor.UserID}
	return n.sendLog(ctx, event, ticketClosedLogEmbed(event.ChannelName, closer.Mention(), n.clock.Now().UTC()))
}

func (n *NotificationService) traceEvent(_ context.Context, event events.Event) error {
	n.logger.Debug("event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("channel_id", event.ChannelID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendLog(ctx context.Context, event events.Event, embed domain.Embed) error {
	if n.logChannelID == "" {
		return nil
	}
	_, err := n.platform.SendMessage(ctx, n.logChannelID, domain.OutgoingMessage{Embeds: []domain.Embed{embed}})
	if errors.Is(err, platform.ErrChannelNotFound) {
		n.logger.Debug("ticket log channel not found; skipping notice",
			zap.String("log_channel_id", n.logChannelID),
			zap.String("event_type", string(event.Type)))
		return nil
	}
	return err
}
