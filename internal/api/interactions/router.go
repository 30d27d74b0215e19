// Package interactions routes decoded chat interactions to the services.
package interactions

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/observability"
	"github.com/spec-kit/ticketbot/internal/platform"
	apperrors "github.com/spec-kit/ticketbot/pkg/util/errorutil"
)

// HandlerFunc handles one interaction. A returned error is turned into a
// private reply by the router.
type HandlerFunc func(ctx context.Context, in platform.Interaction, responder platform.Responder) error

// Router is the explicit dispatch table from command names and component
// ids to handlers. It is populated once at startup and read-only afterwards.
type Router struct {
	commands   map[string]HandlerFunc
	components map[string]HandlerFunc
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewRouter creates an empty router.
func NewRouter(metrics *observability.Metrics, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		commands:   make(map[string]HandlerFunc),
		components: make(map[string]HandlerFunc),
		metrics:    metrics,
		logger:     logger.Named("interactions"),
	}
}

// Command registers a slash command handler.
func (r *Router) Command(name string, h HandlerFunc) {
	if _, dup := r.commands[name]; dup {
		panic(fmt.Sprintf("interactions: command %q registered twice", name))
	}
	r.commands[name] = h
}

// Component registers a persistent control handler.
func (r *Router) Component(customID string, h HandlerFunc) {
	if _, dup := r.components[customID]; dup {
		panic(fmt.Sprintf("interactions: component %q registered twice", customID))
	}
	r.components[customID] = h
}

// Routes lists registered command names and component ids.
func (r *Router) Routes() (commands, components []string) {
	for name := range r.commands {
		commands = append(commands, name)
	}
	for id := range r.components {
		components = append(components, id)
	}
	return commands, components
}

// Handle dispatches in and converts any failure into a single private reply.
func (r *Router) Handle(ctx context.Context, in platform.Interaction, responder platform.Responder) {
	start := time.Now()
	err := r.dispatch(ctx, in, responder)

	outcome := observability.OutcomeOK
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		outcome = domainErr.Code
		r.logFailure(in, domainErr)
		if replyErr := responder.Respond(ctx, domain.Reply{Content: ReplyText(domainErr), Ephemeral: true}); replyErr != nil {
			r.logger.Warn("failed to send error reply",
				zap.String("interaction", in.Name),
				zap.Error(replyErr))
		}
	}
	r.metrics.RecordInteraction(in.Kind.String(), in.Name, outcome, time.Since(start))
}

func (r *Router) dispatch(ctx context.Context, in platform.Interaction, responder platform.Responder) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperrors.NewInternalError(fmt.Errorf("panic: %v", rec))
		}
	}()

	var h HandlerFunc
	switch in.Kind {
	case platform.InteractionCommand:
		h = r.commands[in.Name]
	case platform.InteractionComponent:
		h = r.components[in.Name]
	}
	if h == nil {
		return apperrors.NewInvalidInvocation("This interaction is no longer supported.")
	}
	return h(ctx, in, responder)
}

func (r *Router) logFailure(in platform.Interaction, err *apperrors.DomainError) {
	fields := []zap.Field{
		zap.String("kind", in.Kind.String()),
		zap.String("interaction", in.Name),
		zap.String("code", err.Code),
		zap.String("user_id", in.Invocation.Actor.User.ID),
		zap.String("channel_id", in.Invocation.ChannelID),
	}
	if !err.IsFault() {
		r.logger.Debug("interaction rejected", fields...)
		return
	}
	r.logger.Error("interaction failed", append(fields, zap.Error(err.Err))...)
}

// ReplyText renders the private message shown for err. Role, configuration
// and fault errors carry the cross mark; rule violations read as plain text.
func ReplyText(err *apperrors.DomainError) string {
	switch err.Code {
	case apperrors.CodeMissingRole, apperrors.CodeMissingConfig, apperrors.CodeExternalFailure, apperrors.CodeInternal:
		return "❌ " + err.Message
	default:
		return err.Message
	}
}
