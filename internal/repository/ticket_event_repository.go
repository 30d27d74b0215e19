package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticketbot/internal/domain"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// TicketEventRepository stores the audit read-model of lifecycle events.
type TicketEventRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

type ticketEventRepository struct {
	pool *pgxpool.Pool
}

// NewTicketEventRepository builds repository.
func NewTicketEventRepository(pool *pgxpool.Pool) TicketEventRepository {
	return &ticketEventRepository{pool: pool}
}

// Insert records entry. Replayed events are ignored by event id.
func (r *ticketEventRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO ticket_events (event_id, event_type, guild_id, channel_id, channel_name, actor_id, actor_name, payload, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (event_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query,
		entry.EventID,
		entry.EventType,
		entry.GuildID,
		entry.ChannelID,
		entry.ChannelName,
		entry.ActorID,
		entry.ActorName,
		entry.Payload,
		entry.OccurredAt,
	)
	return err
}

func (r *ticketEventRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	query, args := buildAuditQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.EventType,
			&entry.GuildID,
			&entry.ChannelID,
			&entry.ChannelName,
			&entry.ActorID,
			&entry.ActorName,
			&entry.Payload,
			&entry.OccurredAt,
			&entry.RecordedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func buildAuditQuery(filter domain.AuditFilter) (string, []any) {
	base := `SELECT id, event_id::text, event_type, guild_id, channel_id, channel_name, actor_id, actor_name,
                    payload, occurred_at, recorded_at
             FROM ticket_events`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ChannelID != "" {
		args = append(args, filter.ChannelID)
		clauses = append(clauses, fmt.Sprintf("channel_id=$%d", len(args)))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		clauses = append(clauses, fmt.Sprintf("event_type=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf("%s WHERE %s ORDER BY occurred_at DESC, id DESC LIMIT $%d",
		base, strings.Join(clauses, " AND "), len(args))
	return query, args
}
