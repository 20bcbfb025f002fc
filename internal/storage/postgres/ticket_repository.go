package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/EXP1111/eclipse/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

// CreateTicket records an open ticket for the channel. A second insert for
// the same channel is absorbed; the channel-id uniqueness constraint keeps
// at most one row per channel.
func (r *TicketRepository) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (channel_id, user_id, category, status)
VALUES ($1, $2, $3, 'open')
ON CONFLICT (channel_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, stmt, ticket.ChannelID, ticket.UserID, ticket.Category)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// CloseTicket marks the ticket closed and reports whether a row changed.
// Closing an already-closed or unknown ticket reports false without error.
func (r *TicketRepository) CloseTicket(ctx context.Context, channelID string, closedAt time.Time) (bool, error) {
	const stmt = `
UPDATE tickets
SET status = 'closed', closed_at = $2
WHERE channel_id = $1 AND status = 'open'`

	tag, err := r.pool.Exec(ctx, stmt, channelID, closedAt)
	if err != nil {
		return false, fmt.Errorf("close ticket: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
