package interactions

import (
	"context"

	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/platform"
	"github.com/spec-kit/ticketbot/internal/service"
	apperrors "github.com/spec-kit/ticketbot/pkg/util/errorutil"
)

// TicketWorkflows is the ticket lifecycle surface used by the handlers.
type TicketWorkflows interface {
	PostPanel(ctx context.Context, inv domain.Invocation, responder platform.Responder) error
	CreateTicket(ctx context.Context, inv domain.Invocation, responder platform.Responder) (*domain.Ticket, error)
	ClaimTicket(ctx context.Context, inv domain.Invocation, responder platform.Responder) error
	CloseTicket(ctx context.Context, inv domain.Invocation, source service.CloseSource, responder platform.Responder) error
}

// Broadcaster is the broadcast surface used by the handlers.
type Broadcaster interface {
	PostChangelog(ctx context.Context, inv domain.Invocation, input service.ChangelogInput, responder platform.Responder) (*domain.Message, error)
	PostAnnouncement(ctx context.Context, inv domain.Invocation, input service.AnnouncementInput, responder platform.Responder) (*domain.Message, error)
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Tickets    TicketWorkflows
	Broadcasts Broadcaster
}

// RegisterRoutes wires every command and control. It runs once at startup
// so controls posted before a restart keep resolving by id.
func RegisterRoutes(r *Router, cfg RouteConfig) {
	tickets := &ticketHandler{svc: cfg.Tickets}
	r.Command(domain.CommandTicketPanel, tickets.panel)
	r.Command(domain.CommandClose, tickets.closeCommand)
	r.Component(domain.ComponentTicketOpen, tickets.open)
	r.Component(domain.ComponentTicketClaim, tickets.claim)
	r.Component(domain.ComponentTicketClose, tickets.closeButton)

	broadcasts := &broadcastHandler{svc: cfg.Broadcasts}
	r.Command(domain.CommandChangelog, broadcasts.changelog)
	r.Command(domain.CommandAnnounce, broadcasts.announce)
}

type ticketHandler struct {
	svc TicketWorkflows
}

func (h *ticketHandler) panel(ctx context.Context, in platform.Interaction, responder platform.Responder) error {
	return h.svc.PostPanel(ctx, in.Invocation, responder)
}

func (h *ticketHandler) open(ctx context.Context, in platform.Interaction, responder platform.Responder) error {
	_, err := h.svc.CreateTicket(ctx, in.Invocation, responder)
	return err
}

func (h *ticketHandler) claim(ctx context.Context, in platform.Interaction, responder platform.Responder) error {
	return h.svc.ClaimTicket(ctx, in.Invocation, responder)
}

func (h *ticketHandler) closeButton(ctx context.Context, in platform.Interaction, responder platform.Responder) error {
	return h.svc.CloseTicket(ctx, in.Invocation, service.CloseFromButton, responder)
}

func (h *ticketHandler) closeCommand(ctx context.Context, in platform.Interaction, responder platform.Responder) error {
	return h.svc.CloseTicket(ctx, in.Invocation, service.CloseFromCommand, responder)
}

type broadcastHandler struct {
	svc Broadcaster
}

func (h *broadcastHandler) changelog(ctx context.Context, in platform.Interaction, responder platform.Responder) error {
	input := service.ChangelogInput{Attachment: in.Options.Attachment("attachment")}
	var err error
	if input.Version, err = requireText(in.Options, "version"); err != nil {
		return err
	}
	if input.Title, err = requireText(in.Options, "title"); err != nil {
		return err
	}
	if input.Description, err = requireText(in.Options, "description"); err != nil {
		return err
	}
	_, err = h.svc.PostChangelog(ctx, in.Invocation, input, responder)
	return err
}

func (h *broadcastHandler) announce(ctx context.Context, in platform.Interaction, responder platform.Responder) error {
	channel := in.Options.Channel("channel")
	if channel == nil {
		return apperrors.NewInvalidInvocation("Pick a channel to post in.")
	}
	message, err := requireText(in.Options, "message")
	if err != nil {
		return err
	}
	_, err = h.svc.PostAnnouncement(ctx, in.Invocation, service.AnnouncementInput{
		Channel:    *channel,
		Message:    message,
		Ping:       in.Options.Role("ping"),
		Attachment: in.Options.Attachment("attachment"),
	}, responder)
	return err
}

func requireText(opts platform.Options, name string) (string, error) {
	v, ok := opts.Text(name)
	if !ok {
		return "", apperrors.NewInvalidInvocation("Missing required option `" + name + "`.")
	}
	return v, nil
}
