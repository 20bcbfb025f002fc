package postgres

import (
	"context"
	"fmt"

	"github.com/EXP1111/eclipse/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *InventoryRepository) FindProductByName(ctx context.Context, name string) (domain.Product, error) {
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

// InsertKeys adds one available stock key per entry in keyTexts. Duplicate
// key text is accepted as distinct rows.
func (r *InventoryRepository) InsertKeys(ctx context.Context, productID int64, keyTexts []string) (int, error) {
	const stmt = `
INSERT INTO stock_keys (product_id, key_text)
SELECT $1, unnest($2::text[])`

	tag, err := r.exec(ctx, stmt, productID, keyTexts)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrProductNotFound
		}
		return 0, fmt.Errorf("insert keys: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteAvailableKeys removes up to limit available keys for the product in
// ascending id order. Selection and deletion are one statement so a key
// claimed by a concurrent reservation is never deleted.
func (r *InventoryRepository) DeleteAvailableKeys(ctx context.Context, productID int64, limit int) (int, error) {
	const stmt = `
DELETE FROM stock_keys
WHERE id IN (
	SELECT id FROM stock_keys
	WHERE product_id = $1 AND status = 'available'
	ORDER BY id ASC
	LIMIT $2
	FOR UPDATE SKIP LOCKED
)`

	tag, err := r.exec(ctx, stmt, productID, limit)
	if err != nil {
		return 0, fmt.Errorf("delete available keys: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *InventoryRepository) CountAvailable(ctx context.Context, productID int64) (int, error) {
	const query = `
SELECT COUNT(*) FROM stock_keys
WHERE product_id = $1 AND status = 'available'`

	var total int
	if err := r.queryRow(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count available: %w", err)
	}
	return total, nil
}

// ListStockSummary returns (name, price, available) per product ordered by
// ascending price. Products with no keys appear with a zero count.
func (r *InventoryRepository) ListStockSummary(ctx context.Context) ([]domain.StockSummary, error) {
	const query = `
SELECT p.name, p.price_cents, COUNT(k.id) FILTER (WHERE k.status = 'available') AS available
FROM products p
LEFT JOIN stock_keys k ON k.product_id = p.id
GROUP BY p.id
ORDER BY p.price_cents ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock summary: %w", err)
	}
	defer rows.Close()

	var summaries []domain.StockSummary
	for rows.Next() {
		var s domain.StockSummary
		if err := rows.Scan(&s.ProductName, &s.PriceCents, &s.Available); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate summaries: %w", rows.Err())
	}
	return summaries, nil
}

func (r *InventoryRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *InventoryRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
