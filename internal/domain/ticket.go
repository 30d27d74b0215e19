package domain

// TicketNamePrefix marks channels that back a ticket.
const TicketNamePrefix = "ticket-"

// TicketState enumerates lifecycle states for tickets. None of them are
// stored; they are inferred from the backing channel.
type TicketState string

const (
	TicketStateNone    TicketState = "NONE"
	TicketStateOpen    TicketState = "OPEN"
	TicketStateClaimed TicketState = "CLAIMED"
	TicketStateClosing TicketState = "CLOSING"
	TicketStateDeleted TicketState = "DELETED"
)

// Ticket is a private per-user support channel.
type Ticket struct {
	Name      string
	Owner     User
	ChannelID string
	State     TicketState
	Claimant  *User
}
