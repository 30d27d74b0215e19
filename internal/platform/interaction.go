package platform

import (
	"context"

	"github.com/spec-kit/ticketbot/internal/domain"
)

// InteractionKind separates slash commands from persistent controls.
type InteractionKind int

const (
	InteractionCommand InteractionKind = iota + 1
	InteractionComponent
)

func (k InteractionKind) String() string {
	switch k {
	case InteractionCommand:
		return "command"
	case InteractionComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Interaction is a decoded user interaction. Name is the command name or the
// component id.
type Interaction struct {
	Kind       InteractionKind
	Name       string
	Invocation domain.Invocation
	Options    Options
}

// Options holds the resolved command options by name.
type Options struct {
	Strings     map[string]string
	Channels    map[string]domain.Channel
	Roles       map[string]domain.Role
	Attachments map[string]domain.AttachmentRef
}

// Text returns the named string option.
func (o Options) Text(name string) (string, bool) {
	v, ok := o.Strings[name]
	return v, ok
}

// Channel returns the named channel option or nil.
func (o Options) Channel(name string) *domain.Channel {
	if ch, ok := o.Channels[name]; ok {
		return &ch
	}
	return nil
}

// Role returns the named role option or nil.
func (o Options) Role(name string) *domain.Role {
	if r, ok := o.Roles[name]; ok {
		return &r
	}
	return nil
}

// Attachment returns the named attachment option or nil.
func (o Options) Attachment(name string) *domain.AttachmentRef {
	if a, ok := o.Attachments[name]; ok {
		return &a
	}
	return nil
}

// InteractionHandler consumes decoded interactions.
type InteractionHandler interface {
	Handle(ctx context.Context, in Interaction, responder Responder)
}
