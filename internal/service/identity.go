package service

import (
	"strings"

	"github.com/spec-kit/ticketbot/internal/domain"
)

const maxTicketNameRunes = 20

// ResolveTicketName derives the ticket channel name for a user. Usernames
// that agree on their first 20 lowercased characters map to the same name;
// such users share the one-ticket limit.
func ResolveTicketName(user domain.User) string {
	name := []rune(strings.ToLower(user.Username))
	if len(name) > maxTicketNameRunes {
		name = name[:maxTicketNameRunes]
	}
	return domain.TicketNamePrefix + string(name)
}

// FindExistingTicket returns the text channel already carrying the user's
// ticket name, or nil.
func FindExistingTicket(channels []domain.Channel, user domain.User) *domain.Channel {
	name := ResolveTicketName(user)
	for i := range channels {
		if channels[i].Kind == domain.ChannelKindText && channels[i].Name == name {
			return &channels[i]
		}
	}
	return nil
}

// IsTicketChannel reports whether a channel name carries the ticket prefix.
func IsTicketChannel(name string) bool {
	return strings.HasPrefix(name, domain.TicketNamePrefix)
}
