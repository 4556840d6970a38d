package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type itemSeed struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Image       string
	Stock       int
}

// Apply inserts basic seed data for manual testing. It is idempotent: items
// are matched by name and updated in place.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	items := []itemSeed{
		{
			Name:        "iPhone 15 Pro",
			Description: "Latest Apple smartphone with advanced camera system",
			PriceCents:  99999,
			Category:    "Electronics",
			Image:       "/images/iphone-15-pro.jpg",
			Stock:       25,
		},
		{
			Name:        "MacBook Air M3",
			Description: "Powerful laptop with M3 chip and all-day battery life",
			PriceCents:  129999,
			Category:    "Electronics",
			Image:       "/images/macbook-air-m3.jpg",
			Stock:       15,
		},
		{
			Name:        "AirPods Pro",
			Description: "Wireless earbuds with active noise cancellation",
			PriceCents:  24999,
			Category:    "Electronics",
			Image:       "/images/airpods-pro.jpg",
			Stock:       50,
		},
		{
			Name:        "Premium Cotton T-Shirt",
			Description: "Comfortable and stylish cotton t-shirt",
			PriceCents:  2999,
			Category:    "Clothing",
			Image:       "/images/cotton-tshirt.jpg",
			Stock:       100,
		},
		{
			Name:        "Denim Jeans",
			Description: "Classic blue denim jeans with perfect fit",
			PriceCents:  7999,
			Category:    "Clothing",
			Image:       "/images/denim-jeans.jpg",
			Stock:       60,
		},
		{
			Name:        "Winter Jacket",
			Description: "Warm and waterproof winter jacket",
			PriceCents:  14999,
			Category:    "Clothing",
			Image:       "/images/winter-jacket.jpg",
			Stock:       30,
		},
		{
			Name:        "The Art of Programming",
			Description: "Comprehensive guide to software development",
			PriceCents:  4999,
			Category:    "Books",
			Image:       "/images/art-of-programming.jpg",
			Stock:       40,
		},
		{
			Name:        "Modern Web Design",
			Description: "Learn the latest web design techniques",
			PriceCents:  3999,
			Category:    "Books",
			Image:       "/images/modern-web-design.jpg",
			Stock:       35,
		},
		{
			Name:        "Ceramic Coffee Mug",
			Description: "Handcrafted ceramic mug for the morning brew",
			PriceCents:  1299,
			Category:    "Home",
			Image:       "/images/ceramic-mug.jpg",
			Stock:       80,
		},
		{
			Name:        "Yoga Mat",
			Description: "Non-slip yoga mat for home workouts",
			PriceCents:  3499,
			Category:    "Sports",
			Image:       "/images/yoga-mat.jpg",
			Stock:       45,
		},
	}

	for _, it := range items {
		if err := upsertItem(ctx, pool, it); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.Name, err)
		}
	}

	return nil
}

func upsertItem(ctx context.Context, pool *pgxpool.Pool, it itemSeed) error {
	const q = `
UPDATE items
SET description = $2, price_cents = $3, category = $4, image = $5, stock = $6
WHERE name = $1
`
	cmd, err := pool.Exec(ctx, q, it.Name, it.Description, it.PriceCents, it.Category, it.Image, it.Stock)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	const insert = `
INSERT INTO items (name, description, price_cents, category, image, stock)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = pool.Exec(ctx, insert, it.Name, it.Description, it.PriceCents, it.Category, it.Image, it.Stock)
	return err
}
