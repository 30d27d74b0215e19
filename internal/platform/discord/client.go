// Package discord implements the platform port on top of discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/platform"
)

// Client adapts a discordgo session to platform.Platform. Every call goes to
// the REST API; the session state cache is never consulted for listings.
type Client struct {
	session *discordgo.Session
}

// NewClient wraps session.
func NewClient(session *discordgo.Session) *Client {
	return &Client{session: session}
}

var _ platform.Platform = (*Client)(nil)

// GuildChannels lists every channel in the guild.
func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]domain.Channel, error) {
	channels, err := c.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Channel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, toChannel(ch))
	}
	return out, nil
}

// Channel fetches a single channel.
func (c *Client) Channel(ctx context.Context, channelID string) (*domain.Channel, error) {
	ch, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateError(err)
	}
	out := toChannel(ch)
	return &out, nil
}

// GuildRoles lists the guild roles.
func (c *Client) GuildRoles(ctx context.Context, guildID string) ([]domain.Role, error) {
	roles, err := c.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, domain.Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// CreateChannel creates a channel with the given overwrites.
func (c *Client) CreateChannel(ctx context.Context, guildID string, spec domain.ChannelSpec) (*domain.Channel, error) {
	ch, err := c.session.GuildChannelCreateComplex(guildID, toChannelCreateData(spec), discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateError(err)
	}
	out := toChannel(ch)
	return &out, nil
}

// DeleteChannel deletes a channel, recording reason in the audit log. A
// channel the bot can no longer access counts as already gone.
func (c *Client) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := c.session.ChannelDelete(channelID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return translateDeleteError(err)
}

// SendMessage posts msg into channelID.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg domain.OutgoingMessage) (*domain.Message, error) {
	posted, err := c.session.ChannelMessageSendComplex(channelID, toMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateError(err)
	}
	return &domain.Message{ID: posted.ID, ChannelID: posted.ChannelID}, nil
}

// PinMessage pins a message.
func (c *Client) PinMessage(ctx context.Context, channelID, messageID string) error {
	return translateError(c.session.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx)))
}

// translateError maps unknown-channel responses onto platform.ErrChannelNotFound.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return fmt.Errorf("%w: %v", platform.ErrChannelNotFound, err)
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", platform.ErrChannelNotFound, err)
	}
	return err
}

// translateDeleteError also maps Missing Access onto platform.ErrChannelNotFound.
// Lookups keep reporting it as a failure.
func translateDeleteError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeMissingAccess {
		return fmt.Errorf("%w: %v", platform.ErrChannelNotFound, err)
	}
	return translateError(err)
}
