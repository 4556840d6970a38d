package item

import (
	"context"

	"storefront-api/internal/domain"
)

// ListQuery is a fully validated listing query; the catalog service is
// responsible for normalizing user input (sort allow-list, limit caps)
// before it reaches the repository.
type ListQuery struct {
	Category      string
	MinPriceCents *int64
	MaxPriceCents *int64
	Search        string
	InStock       bool
	SortBy        string
	SortDesc      bool
	Limit         int
	Offset        int
}

type CreateItemInput struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Image       string
	Stock       int
}

type CategoryCount struct {
	Name  string
	Count int
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Item, error)
	List(ctx context.Context, q ListQuery) ([]domain.Item, int, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Item, []string, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	Create(ctx context.Context, in CreateItemInput) (*domain.Item, error)
	Update(ctx context.Context, id string, in CreateItemInput) (*domain.Item, error)
}
