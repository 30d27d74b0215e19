package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticketbot/internal/domain"
)

// Commands returns the guild command set registered at startup.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        domain.CommandTicketPanel,
			Description: "Post the ticket creation panel (owner only)",
		},
		{
			Name:        domain.CommandChangelog,
			Description: "Post a changelog update (owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "version", Description: "Version tag (e.g. v3.1)", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Short update title", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: `Full changelog, use \n for new lines`, Required: true},
				{Type: discordgo.ApplicationCommandOptionAttachment, Name: "attachment", Description: "Optional image or file to attach"},
			},
		},
		{
			Name:        domain.CommandAnnounce,
			Description: "Post an announcement to any channel (owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel to post in",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: `Message text, use \n for new lines`, Required: true},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "ping", Description: "Optional role to ping"},
				{Type: discordgo.ApplicationCommandOptionAttachment, Name: "attachment", Description: "Optional image or file"},
			},
		},
		{
			Name:        domain.CommandClose,
			Description: "Close the current ticket",
		},
	}
}
