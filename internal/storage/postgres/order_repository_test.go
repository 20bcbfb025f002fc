package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/EXP1111/eclipse/internal/domain"
	"github.com/EXP1111/eclipse/internal/testutil"
)

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("ReserveKey claims the oldest key and marks it sold", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertProduct(t, ctx, pool, "Gold Key", 999)
		testutil.InsertKeys(t, ctx, pool, id, "first", "second")

		soldAt := time.Now().UTC().Truncate(time.Microsecond)
		key, err := repo.ReserveKey(ctx, id, soldAt)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if key.KeyText != "first" {
			t.Fatalf("expected oldest key, got %q", key.KeyText)
		}
		if key.Status != domain.KeyStatusSold {
			t.Fatalf("expected sold status, got %s", key.Status)
		}

		var status string
		if err := pool.QueryRow(ctx,
			`SELECT status FROM stock_keys WHERE id = $1`, key.ID,
		).Scan(&status); err != nil {
			t.Fatalf("read back: %v", err)
		}
		if status != "sold" {
			t.Fatalf("expected row sold, got %s", status)
		}
	})

	t.Run("ReserveKey on empty stock returns ErrStockNotAvailable", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertProduct(t, ctx, pool, "Gold Key", 999)

		_, err := repo.ReserveKey(ctx, id, time.Now().UTC())
		if err != domain.ErrStockNotAvailable {
			t.Fatalf("expected ErrStockNotAvailable, got %v", err)
		}
	})

	t.Run("concurrent reservations never grant the same key", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertProduct(t, ctx, pool, "Gold Key", 999)

		const keys = 5
		const callers = 12
		for i := 0; i < keys; i++ {
			testutil.InsertKeys(t, ctx, pool, id, fmt.Sprintf("key-%d", i))
		}

		var wg sync.WaitGroup
		results := make(chan int64, callers)
		failures := make(chan error, callers)

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.WithTx(ctx, func(txCtx context.Context) error {
					key, err := repo.ReserveKey(txCtx, id, time.Now().UTC())
					if err != nil {
						return err
					}
					_, err = repo.CreateOrder(txCtx, domain.Order{
						UserID:      "buyer",
						ProductID:   id,
						KeyID:       key.ID,
						Status:      domain.OrderStatusDelivered,
						DeliveredAt: time.Now().UTC(),
					})
					if err != nil {
						return err
					}
					results <- key.ID
					return nil
				})
				if err != nil {
					failures <- err
				}
			}()
		}
		wg.Wait()
		close(results)
		close(failures)

		granted := make(map[int64]bool)
		for keyID := range results {
			if granted[keyID] {
				t.Fatalf("key %d granted twice", keyID)
			}
			granted[keyID] = true
		}
		if len(granted) != keys {
			t.Fatalf("expected exactly %d successful reservations, got %d", keys, len(granted))
		}

		failed := 0
		for err := range failures {
			if err != domain.ErrStockNotAvailable {
				t.Fatalf("expected ErrStockNotAvailable for losers, got %v", err)
			}
			failed++
		}
		if failed != callers-keys {
			t.Fatalf("expected %d failures, got %d", callers-keys, failed)
		}

		var orders int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orders); err != nil {
			t.Fatalf("count orders: %v", err)
		}
		if orders != keys {
			t.Fatalf("expected %d orders, got %d", keys, orders)
		}
	})

	t.Run("order insert failure rolls back the reservation", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertProduct(t, ctx, pool, "Gold Key", 999)
		testutil.InsertKeys(t, ctx, pool, id, "only")

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			key, err := repo.ReserveKey(txCtx, id, time.Now().UTC())
			if err != nil {
				return err
			}
			// A bogus product id trips the FK and must undo the reservation.
			_, err = repo.CreateOrder(txCtx, domain.Order{
				UserID:      "buyer",
				ProductID:   id + 1000,
				KeyID:       key.ID,
				Status:      domain.OrderStatusDelivered,
				DeliveredAt: time.Now().UTC(),
			})
			return err
		})
		if err == nil {
			t.Fatalf("expected error")
		}

		var available int
		if err := pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM stock_keys WHERE status = 'available'`,
		).Scan(&available); err != nil {
			t.Fatalf("count: %v", err)
		}
		if available != 1 {
			t.Fatalf("expected key back to available, got %d available", available)
		}
	})

	t.Run("a sold key can back only one order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertProduct(t, ctx, pool, "Gold Key", 999)
		testutil.InsertKeys(t, ctx, pool, id, "only")

		key, err := repo.ReserveKey(ctx, id, time.Now().UTC())
		if err != nil {
			t.Fatalf("reserve: %v", err)
		}
		if _, err := repo.CreateOrder(ctx, domain.Order{
			UserID: "buyer-1", ProductID: id, KeyID: key.ID,
			Status: domain.OrderStatusDelivered, DeliveredAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("first order: %v", err)
		}

		_, err = repo.CreateOrder(ctx, domain.Order{
			UserID: "buyer-2", ProductID: id, KeyID: key.ID,
			Status: domain.OrderStatusDelivered, DeliveredAt: time.Now().UTC(),
		})
		if err != domain.ErrStockNotAvailable {
			t.Fatalf("expected ErrStockNotAvailable for duplicate key order, got %v", err)
		}
	})
}
