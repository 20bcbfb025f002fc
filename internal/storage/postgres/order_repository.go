package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/EXP1111/eclipse/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) FindProductByName(ctx context.Context, name string) (domain.Product, error) {
	const query = `SELECT id, name, price_cents FROM products WHERE name = $1`

	var p domain.Product
	err := r.queryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.PriceCents)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

// ReserveKey claims the lowest-id available key for the product and marks it
// sold, as a single statement. The locked subselect with SKIP LOCKED
// guarantees that concurrent reservations each claim a distinct key and that
// none is ever granted twice.
func (r *OrderRepository) ReserveKey(ctx context.Context, productID int64, soldAt time.Time) (domain.StockKey, error) {
	const stmt = `
UPDATE stock_keys
SET status = 'sold', sold_at = $2
WHERE id = (
	SELECT id FROM stock_keys
	WHERE product_id = $1 AND status = 'available'
	ORDER BY id ASC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING id, product_id, key_text`

	var k domain.StockKey
	err := r.queryRow(ctx, stmt, productID, soldAt).Scan(&k.ID, &k.ProductID, &k.KeyText)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.StockKey{}, domain.ErrStockNotAvailable
		}
		return domain.StockKey{}, fmt.Errorf("reserve key: %w", err)
	}
	k.Status = domain.KeyStatusSold
	k.SoldAt = &soldAt
	return k, nil
}

// CreateOrder inserts the order row and returns its id. The unique index on
// key_id turns a double-sell into a constraint violation instead of a second
// order.
func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) (int64, error) {
	const stmt = `
INSERT INTO orders (user_id, product_id, key_id, status, delivered_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	var id int64
	err := r.queryRow(ctx, stmt,
		order.UserID,
		order.ProductID,
		order.KeyID,
		order.Status,
		order.DeliveredAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrStockNotAvailable
		}
		if isForeignKeyViolation(err) {
			return 0, domain.ErrProductNotFound
		}
		return 0, fmt.Errorf("create order: %w", err)
	}
	return id, nil
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
