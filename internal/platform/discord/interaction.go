package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/platform"
)

type responderState int

const (
	stateFresh responderState = iota
	stateDeferred
	stateResponded
)

// responder answers one interaction. The first reply is the interaction
// response, or an edit of it after Defer; anything later is a follow-up.
type responder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu    sync.Mutex
	state responderState
}

func newResponder(session *discordgo.Session, interaction *discordgo.Interaction) *responder {
	return &responder{session: session, interaction: interaction}
}

// Defer acknowledges the interaction with a loading state. It is a no-op
// once anything has been sent.
func (r *responder) Defer(ctx context.Context, ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateFresh {
		return nil
	}
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	r.state = stateDeferred
	return nil
}

func (r *responder) Respond(ctx context.Context, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case stateDeferred:
		if _, err := r.session.InteractionResponseEdit(r.interaction, toWebhookEdit(reply), discordgo.WithContext(ctx)); err != nil {
			return err
		}
	case stateResponded:
		_, err := r.session.FollowupMessageCreate(r.interaction, true, toWebhookParams(reply), discordgo.WithContext(ctx))
		return err
	default:
		err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: toInteractionData(reply),
		}, discordgo.WithContext(ctx))
		if err != nil {
			return err
		}
	}
	r.state = stateResponded
	return nil
}

var _ platform.Deferrer = (*responder)(nil)

// parseInteraction decodes the parts of an interaction that need no API
// calls. Channel name and guild icon are filled in by the gateway.
func parseInteraction(i *discordgo.Interaction) (platform.Interaction, bool) {
	in := platform.Interaction{
		Invocation: domain.Invocation{
			GuildID:   i.GuildID,
			ChannelID: i.ChannelID,
			Actor:     toActor(i),
		},
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		in.Kind = platform.InteractionCommand
		in.Name = data.Name
		in.Options = toOptions(data)
	case discordgo.InteractionMessageComponent:
		in.Kind = platform.InteractionComponent
		in.Name = i.MessageComponentData().CustomID
	default:
		return in, false
	}
	return in, true
}

func toActor(i *discordgo.Interaction) domain.Actor {
	if i.Member == nil {
		if i.User == nil {
			return domain.Actor{}
		}
		return domain.Actor{User: toUser(i.User)}
	}
	actor := domain.Actor{
		RoleIDs: append([]string(nil), i.Member.Roles...),
		IsAdmin: i.Member.Permissions&discordgo.PermissionAdministrator != 0,
	}
	if i.Member.User != nil {
		actor.User = toUser(i.Member.User)
	}
	return actor
}

func toUser(u *discordgo.User) domain.User {
	return domain.User{
		ID:         u.ID,
		Username:   u.Username,
		GlobalName: u.GlobalName,
		AvatarURL:  u.AvatarURL(""),
	}
}

func toOptions(data discordgo.ApplicationCommandInteractionData) platform.Options {
	opts := platform.Options{
		Strings:     map[string]string{},
		Channels:    map[string]domain.Channel{},
		Roles:       map[string]domain.Role{},
		Attachments: map[string]domain.AttachmentRef{},
	}
	resolved := data.Resolved
	if resolved == nil {
		resolved = &discordgo.ApplicationCommandInteractionDataResolved{}
	}
	for _, o := range data.Options {
		id, _ := o.Value.(string)
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			opts.Strings[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionChannel:
			if ch, ok := resolved.Channels[id]; ok {
				opts.Channels[o.Name] = toChannel(ch)
			} else {
				opts.Channels[o.Name] = domain.Channel{ID: id, Kind: domain.ChannelKindText}
			}
		case discordgo.ApplicationCommandOptionRole:
			if r, ok := resolved.Roles[id]; ok {
				opts.Roles[o.Name] = domain.Role{ID: r.ID, Name: r.Name}
			} else {
				opts.Roles[o.Name] = domain.Role{ID: id}
			}
		case discordgo.ApplicationCommandOptionAttachment:
			if a, ok := resolved.Attachments[id]; ok {
				opts.Attachments[o.Name] = domain.AttachmentRef{URL: a.URL, Filename: a.Filename, ContentType: a.ContentType}
			}
		}
	}
	return opts
}
