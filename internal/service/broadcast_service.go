package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketbot/internal/auth"
	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/events"
	"github.com/spec-kit/ticketbot/internal/platform"
	apperrors "github.com/spec-kit/ticketbot/pkg/util/errorutil"
)

// AttachmentFetcher downloads a user supplied attachment.
type AttachmentFetcher interface {
	Fetch(ctx context.Context, ref domain.AttachmentRef) (*domain.File, error)
}

// BroadcastSettings carries the static configuration for broadcasts.
type BroadcastSettings struct {
	ChangelogChannelID string
	StaffRoleID        string
	StaffRoleName      string
	ProductName        string
}

// ChangelogInput describes a /changelog invocation.
type ChangelogInput struct {
	Version     string
	Title       string
	Description string
	Attachment  *domain.AttachmentRef
}

// AnnouncementInput describes an /announce invocation.
type AnnouncementInput struct {
	Channel    domain.Channel
	Message    string
	Ping       *domain.Role
	Attachment *domain.AttachmentRef
}

// BroadcastService formats and delivers staff broadcasts. It keeps no state.
type BroadcastService struct {
	platform   platform.Platform
	fetcher    AttachmentFetcher
	dispatcher events.Dispatcher
	clock      clockwork.Clock
	logger     *zap.Logger
	settings   BroadcastSettings
}

// BroadcastDependencies bundles collaborators for the broadcast service.
type BroadcastDependencies struct {
	Platform   platform.Platform
	Fetcher    AttachmentFetcher
	Dispatcher events.Dispatcher
	Clock      clockwork.Clock
	Logger     *zap.Logger
}

// NewBroadcastService constructs the service.
func NewBroadcastService(deps BroadcastDependencies, settings BroadcastSettings) *BroadcastService {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &BroadcastService{
		platform:   deps.Platform,
		fetcher:    deps.Fetcher,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger.Named("broadcast"),
		settings:   settings,
	}
}

// PostChangelog posts a formatted update to the configured changelog channel.
func (s *BroadcastService) PostChangelog(ctx context.Context, inv domain.Invocation, input ChangelogInput, responder platform.Responder) (*domain.Message, error) {
	if err := auth.RequireRole(inv.Actor, s.settings.StaffRoleID, s.settings.StaffRoleName); err != nil {
		return nil, err
	}
	if err := deferReply(ctx, responder, true); err != nil {
		return nil, err
	}
	target, err := s.changelogChannel(ctx)
	if err != nil {
		return nil, err
	}

	user := inv.Actor.User
	embed := domain.Embed{
		Title:       "📋 " + input.Title,
		Description: UnescapeNewlines(input.Description),
		Color:       colorBrand,
		Timestamp:   s.clock.Now().UTC(),
		Author:      &domain.EmbedAuthor{Name: fmt.Sprintf("%s  ·  %s", s.settings.ProductName, input.Version), IconURL: inv.GuildIcon},
		Footer:      &domain.EmbedFooter{Text: "Posted by " + user.Username, IconURL: user.AvatarURL},
	}
	msg := domain.OutgoingMessage{}
	if err := s.attach(ctx, &msg, &embed, input.Attachment); err != nil {
		return nil, err
	}
	msg.Embeds = []domain.Embed{embed}

	posted, err := s.platform.SendMessage(ctx, target.ID, msg)
	if err != nil {
		return nil, apperrors.NewExternalFailure("Could not post the changelog.", err)
	}
	if err := respond(ctx, responder, domain.Reply{Content: fmt.Sprintf("✅ Changelog posted to %s!", target.Mention()), Ephemeral: true}); err != nil {
		return nil, err
	}

	s.publish(ctx, inv, target, events.BroadcastPostedPayload{
		Kind:       events.BroadcastChangelog,
		Version:    input.Version,
		Attachment: attachmentName(input.Attachment),
	})
	return posted, nil
}

// PostAnnouncement posts a message to an arbitrary channel, optionally
// pinging a role.
func (s *BroadcastService) PostAnnouncement(ctx context.Context, inv domain.Invocation, input AnnouncementInput, responder platform.Responder) (*domain.Message, error) {
	if err := auth.RequireRole(inv.Actor, s.settings.StaffRoleID, s.settings.StaffRoleName); err != nil {
		return nil, err
	}
	if input.Channel.ID == "" {
		return nil, apperrors.NewInvalidInvocation("Pick a channel to post in.")
	}
	if err := deferReply(ctx, responder, true); err != nil {
		return nil, err
	}

	user := inv.Actor.User
	embed := domain.Embed{
		Description: UnescapeNewlines(input.Message),
		Color:       colorBrand,
		Timestamp:   s.clock.Now().UTC(),
		Author:      &domain.EmbedAuthor{Name: user.DisplayName(), IconURL: user.AvatarURL},
	}
	msg := domain.OutgoingMessage{}
	if input.Ping != nil {
		msg.Content = input.Ping.Mention()
	}
	if err := s.attach(ctx, &msg, &embed, input.Attachment); err != nil {
		return nil, err
	}
	msg.Embeds = []domain.Embed{embed}

	posted, err := s.platform.SendMessage(ctx, input.Channel.ID, msg)
	if err != nil {
		return nil, apperrors.NewExternalFailure("Could not post the announcement.", err)
	}
	if err := respond(ctx, responder, domain.Reply{Content: fmt.Sprintf("✅ Posted to %s!", input.Channel.Mention()), Ephemeral: true}); err != nil {
		return nil, err
	}

	payload := events.BroadcastPostedPayload{
		Kind:       events.BroadcastAnnouncement,
		Attachment: attachmentName(input.Attachment),
	}
	if input.Ping != nil {
		payload.PingedRoleID = input.Ping.ID
	}
	s.publish(ctx, inv, &input.Channel, payload)
	return posted, nil
}

func (s *BroadcastService) changelogChannel(ctx context.Context) (*domain.Channel, error) {
	missing := apperrors.NewMissingConfig("Changelog channel not found. Set `CHANGELOG_CHANNEL_ID` env var.", "CHANGELOG_CHANNEL_ID")
	if s.settings.ChangelogChannelID == "" {
		return nil, missing
	}
	channel, err := s.platform.Channel(ctx, s.settings.ChangelogChannelID)
	if errors.Is(err, platform.ErrChannelNotFound) {
		return nil, missing
	}
	if err != nil {
		return nil, apperrors.NewExternalFailure("Could not look up the changelog channel.", err)
	}
	return channel, nil
}

// attach re-hosts the attachment on msg. Images become the embed image.
func (s *BroadcastService) attach(ctx context.Context, msg *domain.OutgoingMessage, embed *domain.Embed, ref *domain.AttachmentRef) error {
	if ref == nil {
		return nil
	}
	if s.fetcher == nil {
		return apperrors.NewInternalError(errors.New("attachment fetcher not configured"))
	}
	file, err := s.fetcher.Fetch(ctx, *ref)
	if err != nil {
		return apperrors.NewExternalFailure("Could not download the attachment.", err)
	}
	msg.Files = append(msg.Files, *file)
	if file.IsImage() {
		embed.ImageURL = "attachment://" + file.Name
	}
	return nil
}

func (s *BroadcastService) publish(ctx context.Context, inv domain.Invocation, target *domain.Channel, payload events.BroadcastPostedPayload) {
	publishEvent(ctx, s.dispatcher, s.clock, s.logger, events.Event{
		Type:        events.EventBroadcastPosted,
		GuildID:     inv.GuildID,
		ChannelID:   target.ID,
		ChannelName: target.Name,
		Actor:       events.ActorFromUser(inv.Actor.User),
		Payload:     payload,
	})
}

func attachmentName(ref *domain.AttachmentRef) string {
	if ref == nil {
		return ""
	}
	return ref.Filename
}
