package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketbot/internal/auth"
	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/events"
	"github.com/spec-kit/ticketbot/internal/platform"
	apperrors "github.com/spec-kit/ticketbot/pkg/util/errorutil"
)

// DefaultCloseDelay is the grace period between the closing notice and the
// channel deletion.
const DefaultCloseDelay = 5 * time.Second

// TicketCategoryName is the container created when none is configured.
const TicketCategoryName = "Tickets"

// CloseScheduler runs a deletion after a delay unless the channel goes away first.
type CloseScheduler interface {
	Schedule(ctx context.Context, channelID string, delay time.Duration, fn func(context.Context) error) (bool, error)
}

// CloseSource identifies the surface a close was requested from.
type CloseSource int

const (
	CloseFromButton CloseSource = iota
	CloseFromCommand
)

// TicketSettings carries the static configuration used by ticket workflows.
type TicketSettings struct {
	CategoryID    string
	StaffRoleID   string
	StaffRoleName string
	BrandName     string
	PanelFooter   string
	CloseDelay    time.Duration
}

// TicketService coordinates the ticket lifecycle against the platform.
type TicketService struct {
	platform   platform.Platform
	scheduler  CloseScheduler
	dispatcher events.Dispatcher
	clock      clockwork.Clock
	logger     *zap.Logger
	settings   TicketSettings
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Platform   platform.Platform
	Scheduler  CloseScheduler
	Dispatcher events.Dispatcher
	Clock      clockwork.Clock
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies, settings TicketSettings) *TicketService {
	if settings.CloseDelay <= 0 {
		settings.CloseDelay = DefaultCloseDelay
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &TicketService{
		platform:   deps.Platform,
		scheduler:  deps.Scheduler,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger.Named("tickets"),
		settings:   settings,
	}
}

// PostPanel posts the ticket creation control into the invoking channel.
func (s *TicketService) PostPanel(ctx context.Context, inv domain.Invocation, responder platform.Responder) error {
	if err := auth.RequireRole(inv.Actor, s.settings.StaffRoleID, s.settings.StaffRoleName); err != nil {
		return err
	}
	_, err := s.platform.SendMessage(ctx, inv.ChannelID, domain.OutgoingMessage{
		Embeds:  []domain.Embed{panelEmbed(s.settings.BrandName, s.settings.PanelFooter)},
		Buttons: panelButtons(),
	})
	if err != nil {
		return apperrors.NewExternalFailure("Could not post the ticket panel.", err)
	}
	return respond(ctx, responder, domain.Reply{Content: "✅ Ticket panel posted.", Ephemeral: true})
}

// CreateTicket opens a private ticket channel for the invoking user. The
// duplicate check and the channel creation are separate platform calls, so
// two simultaneous requests from one user can both succeed.
func (s *TicketService) CreateTicket(ctx context.Context, inv domain.Invocation, responder platform.Responder) (*domain.Ticket, error) {
	user := inv.Actor.User

	// Interactions expire three seconds after they arrive unless acknowledged.
	if err := deferReply(ctx, responder, true); err != nil {
		return nil, err
	}

	channels, err := s.platform.GuildChannels(ctx, inv.GuildID)
	if err != nil {
		return nil, apperrors.NewExternalFailure("Could not look up existing tickets.", err)
	}
	if existing := FindExistingTicket(channels, user); existing != nil {
		return nil, apperrors.NewConflict(
			fmt.Sprintf("You already have an open ticket: %s", existing.Mention()),
			map[string]any{"channel_id": existing.ID})
	}

	category, err := s.resolveCategory(ctx, inv.GuildID, channels)
	if err != nil {
		return nil, apperrors.NewExternalFailure("Could not prepare the ticket category.", err)
	}
	overwrites, err := s.ticketOverwrites(ctx, inv.GuildID, user)
	if err != nil {
		return nil, apperrors.NewExternalFailure("Could not look up the staff role.", err)
	}

	name := ResolveTicketName(user)
	channel, err := s.platform.CreateChannel(ctx, inv.GuildID, domain.ChannelSpec{
		Name:       name,
		Kind:       domain.ChannelKindText,
		ParentID:   category.ID,
		Topic:      fmt.Sprintf("Ticket opened by %s (%s)", user.Username, user.ID),
		Overwrites: overwrites,
	})
	if err != nil {
		return nil, apperrors.NewExternalFailure("Could not create the ticket channel.", err)
	}

	intro, err := s.platform.SendMessage(ctx, channel.ID, domain.OutgoingMessage{
		Content: user.Mention(),
		Embeds:  []domain.Embed{welcomeEmbed(user, channel.ID, s.now())},
		Buttons: ticketControlButtons(),
	})
	if err != nil {
		s.rollbackChannel(ctx, channel.ID)
		return nil, apperrors.NewExternalFailure("Could not set up the ticket channel.", err)
	}
	if err := s.platform.PinMessage(ctx, channel.ID, intro.ID); err != nil {
		s.logger.Warn("failed to pin ticket intro", zap.String("channel_id", channel.ID), zap.Error(err))
	}

	if err := respond(ctx, responder, domain.Reply{Content: "✅ Ticket created: " + channel.Mention(), Ephemeral: true}); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketOpened,
		GuildID:     inv.GuildID,
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Actor:       events.ActorFromUser(user),
		Payload:     events.TicketOpenedPayload{CategoryID: category.ID},
	})
	s.logger.Info("ticket opened",
		zap.String("channel_id", channel.ID),
		zap.String("channel_name", channel.Name),
		zap.String("user_id", user.ID))

	return &domain.Ticket{
		Name:      channel.Name,
		Owner:     user,
		ChannelID: channel.ID,
		State:     domain.TicketStateOpen,
	}, nil
}

// ClaimTicket posts a claim notice naming the actor. Nothing is stored; the
// latest notice in the channel is the current claim.
func (s *TicketService) ClaimTicket(ctx context.Context, inv domain.Invocation, responder platform.Responder) error {
	if err := auth.RequireStaff(inv.Actor, s.settings.StaffRoleID, "Only staff can claim tickets."); err != nil {
		return err
	}
	claimant := inv.Actor.User
	if err := respond(ctx, responder, domain.Reply{Embeds: []domain.Embed{claimEmbed(claimant)}}); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketClaimed,
		GuildID:     inv.GuildID,
		ChannelID:   inv.ChannelID,
		ChannelName: inv.ChannelName,
		Actor:       events.ActorFromUser(claimant),
	})
	return nil
}

// CloseTicket posts the closing notice, emits the close event, waits for
// the grace delay and deletes the channel. A channel that disappears
// during the delay counts as closed.
func (s *TicketService) CloseTicket(ctx context.Context, inv domain.Invocation, source CloseSource, responder platform.Responder) error {
	if source == CloseFromCommand && !IsTicketChannel(inv.ChannelName) {
		return apperrors.NewInvalidChannel("This isn't a ticket channel.")
	}
	denial := "Only staff can close tickets."
	if source == CloseFromCommand {
		denial = "Only staff can use this."
	}
	if err := auth.RequireStaff(inv.Actor, s.settings.StaffRoleID, denial); err != nil {
		return err
	}

	closer := inv.Actor.User
	notice := domain.Reply{Embeds: []domain.Embed{closingEmbed(closer, s.settings.CloseDelay, s.now())}}
	if err := respond(ctx, responder, notice); err != nil {
		return err
	}

	reason := "Ticket closed by " + closer.Username
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketClosed,
		GuildID:     inv.GuildID,
		ChannelID:   inv.ChannelID,
		ChannelName: inv.ChannelName,
		Actor:       events.ActorFromUser(closer),
		Payload:     events.TicketClosedPayload{Reason: reason},
	})

	ran, err := s.scheduler.Schedule(ctx, inv.ChannelID, s.settings.CloseDelay, func(ctx context.Context) error {
		return s.platform.DeleteChannel(ctx, inv.ChannelID, reason)
	})
	switch {
	case errors.Is(err, platform.ErrChannelNotFound):
		s.logger.Info("ticket channel already gone", zap.String("channel_id", inv.ChannelID))
		return nil
	case err != nil:
		return apperrors.NewExternalFailure("Could not delete the ticket channel.", err)
	}
	if ran {
		s.logger.Info("ticket closed",
			zap.String("channel_id", inv.ChannelID),
			zap.String("channel_name", inv.ChannelName),
			zap.String("closed_by", closer.ID))
	}
	return nil
}

// resolveCategory returns the configured container, an existing category
// named Tickets, or a freshly created one, in that order.
func (s *TicketService) resolveCategory(ctx context.Context, guildID string, channels []domain.Channel) (*domain.Channel, error) {
	if id := s.settings.CategoryID; id != "" {
		category, err := s.platform.Channel(ctx, id)
		switch {
		case err == nil && category.Kind == domain.ChannelKindCategory:
			return category, nil
		case err != nil && !errors.Is(err, platform.ErrChannelNotFound):
			s.logger.Warn("configured ticket category lookup failed", zap.String("category_id", id), zap.Error(err))
		default:
			s.logger.Warn("configured ticket category unavailable", zap.String("category_id", id))
		}
	}
	for i := range channels {
		if channels[i].Kind == domain.ChannelKindCategory && channels[i].Name == TicketCategoryName {
			return &channels[i], nil
		}
	}
	return s.platform.CreateChannel(ctx, guildID, domain.ChannelSpec{
		Name: TicketCategoryName,
		Kind: domain.ChannelKindCategory,
	})
}

// ticketOverwrites hides the channel from everyone, then grants the owner
// and, when the role exists, staff.
func (s *TicketService) ticketOverwrites(ctx context.Context, guildID string, owner domain.User) ([]domain.PermissionOverwrite, error) {
	overwrites := []domain.PermissionOverwrite{
		{
			TargetID: guildID,
			Target:   domain.OverwriteRole,
			Deny:     domain.PermissionViewChannel,
		},
		{
			TargetID: owner.ID,
			Target:   domain.OverwriteMember,
			Allow:    domain.PermissionViewChannel | domain.PermissionSendMessages | domain.PermissionAttachFiles,
		},
	}
	if s.settings.StaffRoleID == "" {
		return overwrites, nil
	}
	roles, err := s.platform.GuildRoles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if role.ID == s.settings.StaffRoleID {
			overwrites = append(overwrites, domain.PermissionOverwrite{
				TargetID: role.ID,
				Target:   domain.OverwriteRole,
				Allow:    domain.PermissionViewChannel | domain.PermissionSendMessages | domain.PermissionManageChannels,
			})
			break
		}
	}
	return overwrites, nil
}

func (s *TicketService) rollbackChannel(ctx context.Context, channelID string) {
	if err := s.platform.DeleteChannel(ctx, channelID, "Ticket setup failed"); err != nil && !errors.Is(err, platform.ErrChannelNotFound) {
		s.logger.Error("failed to remove half-created ticket channel", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (s *TicketService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.clock, s.logger, event)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, clock clockwork.Clock, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = clock.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("channel_id", event.ChannelID),
			zap.Error(err))
	}
}

func deferReply(ctx context.Context, responder platform.Responder, ephemeral bool) error {
	d, ok := responder.(platform.Deferrer)
	if !ok {
		return nil
	}
	if err := d.Defer(ctx, ephemeral); err != nil {
		return apperrors.NewExternalFailure("Could not acknowledge the interaction.", err)
	}
	return nil
}

func respond(ctx context.Context, responder platform.Responder, reply domain.Reply) error {
	if err := responder.Respond(ctx, reply); err != nil {
		return apperrors.NewExternalFailure("Could not reply to the interaction.", err)
	}
	return nil
}
