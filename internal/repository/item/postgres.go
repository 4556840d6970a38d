package item

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const itemColumns = `id::text, name, description, price_cents, category, image, stock, created_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	const q = `
SELECT ` + itemColumns + `
FROM items
WHERE id = $1
`
	row := r.pool.QueryRow(ctx, q, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Item, error) {
	if len(ids) == 0 {
		return map[string]domain.Item{}, nil
	}
	const q = `
SELECT ` + itemColumns + `
FROM items
WHERE id = ANY($1::uuid[])
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.Item, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[item.ID] = *item
	}
	return out, rows.Err()
}

func (r *postgresRepo) List(ctx context.Context, q ListQuery) ([]domain.Item, int, error) {
	where, args := buildWhere(q)

	countQuery := `SELECT COUNT(*) FROM items` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if q.SortBy != "" {
		order = q.SortBy
	}
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	listQuery := fmt.Sprintf(`SELECT `+itemColumns+` FROM items%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, order, dir, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

func (r *postgresRepo) Search(ctx context.Context, query string, limit int) ([]domain.Item, []string, error) {
	pattern := "%" + query + "%"
	const q = `
SELECT ` + itemColumns + `
FROM items
WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1
ORDER BY name ASC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, pattern, limit)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	catRows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM items WHERE category ILIKE $1 ORDER BY category`, pattern)
	if err != nil {
		return nil, nil, err
	}
	defer catRows.Close()

	categories := make([]string, 0)
	for catRows.Next() {
		var c string
		if err := catRows.Scan(&c); err != nil {
			return nil, nil, err
		}
		categories = append(categories, c)
	}
	return items, categories, catRows.Err()
}

func (r *postgresRepo) Categories(ctx context.Context) ([]CategoryCount, error) {
	const q = `
SELECT category, COUNT(*)
FROM items
GROUP BY category
ORDER BY category ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CategoryCount, 0)
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, in CreateItemInput) (*domain.Item, error) {
	const q = `
INSERT INTO items (name, description, price_cents, category, image, stock)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + itemColumns + `
`
	row := r.pool.QueryRow(ctx, q, in.Name, in.Description, in.PriceCents, in.Category, in.Image, in.Stock)
	return scanItem(row)
}

func (r *postgresRepo) Update(ctx context.Context, id string, in CreateItemInput) (*domain.Item, error) {
	const q = `
UPDATE items
SET name = $1, description = $2, price_cents = $3, category = $4, image = $5, stock = $6
WHERE id = $7
RETURNING ` + itemColumns + `
`
	row := r.pool.QueryRow(ctx, q, in.Name, in.Description, in.PriceCents, in.Category, in.Image, in.Stock, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func buildWhere(q ListQuery) (string, []interface{}) {
	clauses := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if q.Category != "" {
		args = append(args, q.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.MinPriceCents != nil {
		args = append(args, *q.MinPriceCents)
		clauses = append(clauses, fmt.Sprintf("price_cents >= $%d", len(args)))
	}
	if q.MaxPriceCents != nil {
		args = append(args, *q.MaxPriceCents)
		clauses = append(clauses, fmt.Sprintf("price_cents <= $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.InStock {
		clauses = append(clauses, "stock > 0")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.PriceCents,
		&item.Category,
		&item.Image,
		&item.Stock,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
