package catalog

import (
	"context"
	"errors"
	"strings"

	"storefront-api/internal/domain"
	itemrepo "storefront-api/internal/repository/item"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
	searchLimit     = 10
	minSearchLen    = 2
)

// sortColumns maps client sort keys to item columns. Anything else falls
// back to createdAt so user input never reaches the ORDER BY clause raw.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price_cents",
	"name":      "name",
	"stock":     "stock",
}

type Service struct {
	repo itemrepo.Repository
}

func New(repo itemrepo.Repository) *Service {
	return &Service{repo: repo}
}

type ListInput struct {
	Category      string
	MinPriceCents *int64
	MaxPriceCents *int64
	Search        string
	InStock       bool
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	Limit       int  `json:"limit"`
}

// List returns a filtered, sorted, paginated item page.
func (s *Service) List(ctx context.Context, in ListInput) ([]domain.Item, Pagination, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	category := strings.TrimSpace(in.Category)
	if category == "all" {
		category = ""
	}

	column, ok := sortColumns[in.SortBy]
	if !ok {
		column = "created_at"
	}

	q := itemrepo.ListQuery{
		Category:      category,
		MinPriceCents: in.MinPriceCents,
		MaxPriceCents: in.MaxPriceCents,
		Search:        strings.TrimSpace(in.Search),
		InStock:       in.InStock,
		SortBy:        column,
		SortDesc:      !strings.EqualFold(in.SortOrder, "asc"),
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return items, Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
		Limit:       limit,
	}, nil
}

// Search returns up to ten item suggestions plus matching category names.
// Queries shorter than two characters yield no suggestions.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Item, []string, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLen {
		return []domain.Item{}, []string{}, nil
	}
	return s.repo.Search(ctx, query, searchLimit)
}

func (s *Service) Categories(ctx context.Context) ([]itemrepo.CategoryCount, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Item, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrInvalidItemID
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

type ItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Stock       int    `json:"stock"`
}

func (s *Service) Create(ctx context.Context, in ItemInput) (*domain.Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, repoInput(in))
}

func (s *Service) Update(ctx context.Context, id string, in ItemInput) (*domain.Item, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrInvalidItemID
	}
	if err := validateItemInput(in); err != nil {
		return nil, err
	}
	item, err := s.repo.Update(ctx, id, repoInput(in))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func validateItemInput(in ItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.ValidationError("name required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return domain.ValidationError("description required")
	}
	if in.PriceCents < 0 {
		return domain.ValidationError("price cannot be negative")
	}
	if !domain.ValidCategory(in.Category) {
		return domain.ValidationError("unknown category")
	}
	if in.Stock < 0 {
		return domain.ValidationError("stock cannot be negative")
	}
	return nil
}

func repoInput(in ItemInput) itemrepo.CreateItemInput {
	return itemrepo.CreateItemInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Category:    in.Category,
		Image:       strings.TrimSpace(in.Image),
		Stock:       in.Stock,
	}
}
