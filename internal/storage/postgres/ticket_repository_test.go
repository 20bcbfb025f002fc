package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/EXP1111/eclipse/internal/domain"
	"github.com/EXP1111/eclipse/internal/testutil"
)

func TestTicketRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewTicketRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateTicket keeps one row per channel", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		ticket := domain.Ticket{
			ChannelID: "chan-1",
			UserID:    "user-1",
			Category:  domain.TicketCategoryPurchase,
		}
		if err := repo.CreateTicket(ctx, ticket); err != nil {
			t.Fatalf("create: %v", err)
		}
		// The duplicate insert is absorbed by the conflict clause.
		ticket.UserID = "user-2"
		if err := repo.CreateTicket(ctx, ticket); err != nil {
			t.Fatalf("duplicate create: %v", err)
		}

		var userID string
		if err := pool.QueryRow(ctx,
			`SELECT user_id FROM tickets WHERE channel_id = 'chan-1'`,
		).Scan(&userID); err != nil {
			t.Fatalf("read back: %v", err)
		}
		if userID != "user-1" {
			t.Fatalf("expected first insert to win, got %q", userID)
		}
	})

	t.Run("CloseTicket is idempotent", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if err := repo.CreateTicket(ctx, domain.Ticket{
			ChannelID: "chan-1",
			UserID:    "user-1",
			Category:  domain.TicketCategorySupport,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}

		closedAt := time.Now().UTC()
		closed, err := repo.CloseTicket(ctx, "chan-1", closedAt)
		if err != nil {
			t.Fatalf("close: %v", err)
		}
		if !closed {
			t.Fatalf("expected first close to report true")
		}

		closed, err = repo.CloseTicket(ctx, "chan-1", closedAt)
		if err != nil {
			t.Fatalf("second close: %v", err)
		}
		if closed {
			t.Fatalf("expected second close to report false")
		}

		closed, err = repo.CloseTicket(ctx, "never-existed", closedAt)
		if err != nil {
			t.Fatalf("close unknown: %v", err)
		}
		if closed {
			t.Fatalf("expected close of unknown channel to report false")
		}
	})
}
