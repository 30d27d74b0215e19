package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/events"
	"github.com/spec-kit/ticketbot/internal/repository"
	apperrors "github.com/spec-kit/ticketbot/pkg/util/errorutil"
)

// AuditService records lifecycle events in the audit read-model and serves
// the ops listing. Ticket decisions never read from it.
type AuditService struct {
	repo       repository.TicketEventRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(repo repository.TicketEventRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to every event.
func (s *AuditService) RegisterHandlers() {
	s.dispatcher.SubscribeAll(s.record)
}

func (s *AuditService) record(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.Type, err)
	}
	entry := &domain.AuditEntry{
		EventID:     event.ID,
		EventType:   string(event.Type),
		GuildID:     event.GuildID,
		ChannelID:   event.ChannelID,
		ChannelName: event.ChannelName,
		ActorID:     event.Actor.UserID,
		ActorName:   event.Actor.Username,
		Payload:     payload,
		OccurredAt:  event.Timestamp,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("record %s: %w", event.Type, err)
	}
	return nil
}

// List returns recorded events, newest first.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	if filter.Limit < 0 {
		return nil, apperrors.NewInvalidInvocation("limit must not be negative")
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewExternalFailure("Could not read the audit log.", err)
	}
	return entries, nil
}
