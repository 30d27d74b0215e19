package discord

import (
	"bytes"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticketbot/internal/domain"
)

var permissionBits = []struct {
	domain  domain.Permission
	discord int64
}{
	{domain.PermissionViewChannel, discordgo.PermissionViewChannel},
	{domain.PermissionSendMessages, discordgo.PermissionSendMessages},
	{domain.PermissionAttachFiles, discordgo.PermissionAttachFiles},
	{domain.PermissionManageChannels, discordgo.PermissionManageChannels},
}

func toPermissions(p domain.Permission) int64 {
	var out int64
	for _, bit := range permissionBits {
		if p.Has(bit.domain) {
			out |= bit.discord
		}
	}
	return out
}

func toChannel(ch *discordgo.Channel) domain.Channel {
	return domain.Channel{
		ID:       ch.ID,
		GuildID:  ch.GuildID,
		Name:     ch.Name,
		Kind:     channelKind(ch.Type),
		ParentID: ch.ParentID,
		Topic:    ch.Topic,
	}
}

func channelKind(t discordgo.ChannelType) domain.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return domain.ChannelKindText
	case discordgo.ChannelTypeGuildCategory:
		return domain.ChannelKindCategory
	default:
		return domain.ChannelKindOther
	}
}

func toChannelCreateData(spec domain.ChannelSpec) discordgo.GuildChannelCreateData {
	data := discordgo.GuildChannelCreateData{
		Name:     spec.Name,
		Type:     discordgo.ChannelTypeGuildText,
		Topic:    spec.Topic,
		ParentID: spec.ParentID,
	}
	if spec.Kind == domain.ChannelKindCategory {
		data.Type = discordgo.ChannelTypeGuildCategory
	}
	for _, o := range spec.Overwrites {
		overwrite := &discordgo.PermissionOverwrite{
			ID:    o.TargetID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: toPermissions(o.Allow),
			Deny:  toPermissions(o.Deny),
		}
		if o.Target == domain.OverwriteMember {
			overwrite.Type = discordgo.PermissionOverwriteTypeMember
		}
		data.PermissionOverwrites = append(data.PermissionOverwrites, overwrite)
	}
	return data
}

func toEmbed(e domain.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.Format(time.RFC3339)
	}
	if e.Author != nil {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.Author.Name, IconURL: e.Author.IconURL}
	}
	if e.Footer != nil {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer.Text, IconURL: e.Footer.IconURL}
	}
	if e.ImageURL != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	return out
}

func toEmbeds(embeds []domain.Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		out = append(out, toEmbed(e))
	}
	return out
}

func buttonStyle(s domain.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case domain.ButtonSuccess:
		return discordgo.SuccessButton
	case domain.ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}

// toComponents lays buttons out in a single row. Unicode emoji are folded
// into the label.
func toComponents(buttons []domain.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}
	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		label := b.Label
		if b.Emoji != "" {
			label = b.Emoji + " " + label
		}
		row.Components = append(row.Components, discordgo.Button{
			Label:    label,
			Style:    buttonStyle(b.Style),
			CustomID: b.CustomID,
		})
	}
	return []discordgo.MessageComponent{row}
}

func toFiles(files []domain.File) []*discordgo.File {
	if len(files) == 0 {
		return nil
	}
	out := make([]*discordgo.File, 0, len(files))
	for _, f := range files {
		out = append(out, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Data),
		})
	}
	return out
}

func toMessageSend(msg domain.OutgoingMessage) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Buttons),
		Files:      toFiles(msg.Files),
	}
}

func toInteractionData(reply domain.Reply) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content: reply.Content,
		Embeds:  toEmbeds(reply.Embeds),
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

func toWebhookParams(reply domain.Reply) *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{
		Content: reply.Content,
		Embeds:  toEmbeds(reply.Embeds),
	}
	if reply.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	return params
}

// toWebhookEdit fills a deferred response. Visibility was fixed by the
// deferral and cannot change here.
func toWebhookEdit(reply domain.Reply) *discordgo.WebhookEdit {
	content := reply.Content
	embeds := toEmbeds(reply.Embeds)
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	return &discordgo.WebhookEdit{Content: &content, Embeds: &embeds}
}
