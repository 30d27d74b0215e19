package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/ticketbot/internal/domain"
)

const (
	colorBrand = 0x00f5a0
	colorClose = 0xff4d6d
	colorClaim = 0x4d9fff
)

// newlineEscape is the two-character sequence users type for a line break.
const newlineEscape = `\n`

// UnescapeNewlines turns the literal `\n` placeholder into real line breaks.
func UnescapeNewlines(s string) string {
	return strings.ReplaceAll(s, newlineEscape, "\n")
}

func panelEmbed(brand, footer string) domain.Embed {
	return domain.Embed{
		Title: fmt.Sprintf("🎫 %s Support", brand),
		Description: "Need help? Click below to open a private support ticket.\n\n" +
			"**What to include:**\n" +
			"• Your issue in detail\n" +
			"• Screenshots if relevant\n" +
			"• Your Discord and Roblox username\n\n" +
			"*Tickets are private — only you and staff can see them.*",
		Color:  colorBrand,
		Footer: &domain.EmbedFooter{Text: footer},
	}
}

func panelButtons() []domain.Button {
	return []domain.Button{
		{CustomID: domain.ComponentTicketOpen, Label: "Open a Ticket", Emoji: "🎫", Style: domain.ButtonSuccess},
	}
}

func ticketControlButtons() []domain.Button {
	return []domain.Button{
		{CustomID: domain.ComponentTicketClose, Label: "Close Ticket", Emoji: "🔒", Style: domain.ButtonDanger},
		{CustomID: domain.ComponentTicketClaim, Label: "Claim", Emoji: "✋", Style: domain.ButtonPrimary},
	}
}

func welcomeEmbed(user domain.User, channelID string, now time.Time) domain.Embed {
	return domain.Embed{
		Title: "🎫 Support Ticket",
		Description: fmt.Sprintf("Welcome %s!\n\n", user.Mention()) +
			"Please describe your issue and a staff member will assist you shortly.\n\n" +
			"Click **Close Ticket** when your issue is resolved.",
		Color:     colorBrand,
		Timestamp: now,
		Author:    &domain.EmbedAuthor{Name: user.Username, IconURL: user.AvatarURL},
		Footer:    &domain.EmbedFooter{Text: "Ticket ID: " + channelID},
	}
}

func claimEmbed(claimant domain.User) domain.Embed {
	return domain.Embed{
		Description: fmt.Sprintf("✋ %s has claimed this ticket.", claimant.Mention()),
		Color:       colorClaim,
	}
}

func closingEmbed(closer domain.User, delay time.Duration, now time.Time) domain.Embed {
	return domain.Embed{
		Title:       "🔒 Closing Ticket",
		Description: fmt.Sprintf("Closed by %s. Deleting in %d seconds.", closer.Mention(), int(delay.Seconds())),
		Color:       colorClose,
		Timestamp:   now,
	}
}

func ticketOpenedLogEmbed(owner domain.User, channelID string, now time.Time) domain.Embed {
	return domain.Embed{
		Title:       "Ticket Opened",
		Description: fmt.Sprintf("**User:** %s (`%s`)\n**Channel:** <#%s>", owner.Mention(), owner.ID, channelID),
		Color:       colorBrand,
		Timestamp:   now,
	}
}

func ticketClosedLogEmbed(channelName, closerMention string, now time.Time) domain.Embed {
	return domain.Embed{
		Title:       "Ticket Closed",
		Description: fmt.Sprintf("**Channel:** #%s\n**Closed by:** %s", channelName, closerMention),
		Color:       colorClose,
		Timestamp:   now,
	}
}
