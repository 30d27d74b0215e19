package domain

// ChannelKind distinguishes the channel types the bot cares about.
type ChannelKind string

const (
	ChannelKindText     ChannelKind = "TEXT"
	ChannelKindCategory ChannelKind = "CATEGORY"
	ChannelKindOther    ChannelKind = "OTHER"
)

// Channel is a guild channel as seen by the bot.
type Channel struct {
	ID       string
	GuildID  string
	Name     string
	Kind     ChannelKind
	ParentID string
	Topic    string
}

// Mention renders the platform mention syntax for the channel.
func (c Channel) Mention() string {
	return "<#" + c.ID + ">"
}

// Permission is a bit in the platform permission set.
type Permission int64

const (
	PermissionViewChannel Permission = 1 << iota
	PermissionSendMessages
	PermissionAttachFiles
	PermissionManageChannels
)

// Has reports whether every bit of other is set.
func (p Permission) Has(other Permission) bool {
	return p&other == other
}

// OverwriteTarget says whether an overwrite applies to a role or a member.
type OverwriteTarget string

const (
	OverwriteRole   OverwriteTarget = "ROLE"
	OverwriteMember OverwriteTarget = "MEMBER"
)

// PermissionOverwrite is one access grant or denial on a channel.
type PermissionOverwrite struct {
	TargetID string
	Target   OverwriteTarget
	Allow    Permission
	Deny     Permission
}

// ChannelSpec describes a channel to create.
type ChannelSpec struct {
	Name       string
	Kind       ChannelKind
	ParentID   string
	Topic      string
	Overwrites []PermissionOverwrite
}

// Role is a guild role.
type Role struct {
	ID   string
	Name string
}

// Mention renders the platform mention syntax for the role.
func (r Role) Mention() string {
	return "<@&" + r.ID + ">"
}
