package domain

import (
	"strings"
	"time"
)

// Stable interaction identifiers. Previously posted controls keep working
// across restarts only while these never change.
const (
	ComponentTicketOpen  = "ticket_open"
	ComponentTicketClose = "ticket_close"
	ComponentTicketClaim = "ticket_claim"
)

// Slash command names.
const (
	CommandTicketPanel = "ticket-panel"
	CommandChangelog   = "changelog"
	CommandAnnounce    = "announce"
	CommandClose       = "close"
)

// ButtonStyle mirrors the platform button colours.
type ButtonStyle string

const (
	ButtonPrimary ButtonStyle = "PRIMARY"
	ButtonSuccess ButtonStyle = "SUCCESS"
	ButtonDanger  ButtonStyle = "DANGER"
)

// Button is a persistent interactive control.
type Button struct {
	CustomID string
	Label    string
	Emoji    string
	Style    ButtonStyle
}

// EmbedAuthor is the author line of an embed.
type EmbedAuthor struct {
	Name    string
	IconURL string
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text    string
	IconURL string
}

// Embed is a rich message block.
type Embed struct {
	Title       string
	Description string
	Color       int
	Timestamp   time.Time
	Author      *EmbedAuthor
	Footer      *EmbedFooter
	ImageURL    string
}

// File is an upload carried with a message.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsImage reports whether the declared content type is an image.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// AttachmentRef points at a file the user supplied with a command.
type AttachmentRef struct {
	URL         string
	Filename    string
	ContentType string
}

// OutgoingMessage is a message to post into a channel.
type OutgoingMessage struct {
	Content string
	Embeds  []Embed
	Buttons []Button
	Files   []File
}

// Message is a posted message.
type Message struct {
	ID        string
	ChannelID string
}

// Reply is a response to the interaction that triggered an operation.
// Ephemeral replies are visible only to the actor.
type Reply struct {
	Content   string
	Embeds    []Embed
	Ephemeral bool
}
