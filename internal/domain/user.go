package domain

// User is a chat platform account.
type User struct {
	ID         string
	Username   string
	GlobalName string
	AvatarURL  string
}

// DisplayName prefers the global display name over the username.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Mention renders the platform mention syntax for the user.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Actor is the permission context of whoever triggered an interaction.
// It is rebuilt from the interaction payload every time.
type Actor struct {
	User    User
	RoleIDs []string
	IsAdmin bool
}

// Invocation describes where an interaction happened.
type Invocation struct {
	GuildID     string
	GuildIcon   string
	ChannelID   string
	ChannelName string
	Actor       Actor
}
