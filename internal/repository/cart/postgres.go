package cart

import (
	"context"
	"errors"

	"storefront-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, owner_id::text, version, total_cents, item_count, created_at, updated_at`

func (r *postgresRepo) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE owner_id = $1
`
	return r.fetchCart(ctx, q, ownerID)
}

// Create inserts an empty cart for the owner. It is idempotent: when a cart
// already exists (including one inserted by a concurrent request) the
// existing row is returned.
func (r *postgresRepo) Create(ctx context.Context, ownerID string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (owner_id)
VALUES ($1)
ON CONFLICT (owner_id) DO NOTHING
`
	if _, err := r.pool.Exec(ctx, q, ownerID); err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID)
}

// Save commits the aggregate with a compare-and-swap on the version column.
// All-or-nothing: the version bump, the line rewrite, and the derived totals
// land in one transaction or not at all.
func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const casQuery = `
UPDATE carts
SET version = version + 1,
    total_cents = $1,
    item_count = $2,
    updated_at = now()
WHERE id = $3 AND version = $4
RETURNING version, updated_at
`
	next := *cart
	err = tx.QueryRow(ctx, casQuery, cart.TotalCents, cart.ItemCount, cart.ID, cart.Version).Scan(&next.Version, &next.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVersionConflict
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cart.ID); err != nil {
		return nil, err
	}
	for i, line := range cart.Lines {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, item_id, quantity, unit_price_cents, position)
VALUES ($1, $2, $3, $4, $5)
`, cart.ID, line.ItemID, line.Quantity, line.UnitPriceCents, i); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &next, nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, args...).Scan(
		&cart.ID,
		&cart.OwnerID,
		&cart.Version,
		&cart.TotalCents,
		&cart.ItemCount,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT item_id::text, quantity, unit_price_cents
FROM cart_lines
WHERE cart_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = make([]domain.CartLine, 0, 4)
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ItemID, &line.Quantity, &line.UnitPriceCents); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}
