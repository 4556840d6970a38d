package cart

import (
	"context"

	"storefront-api/internal/domain"
)

// Repository is the durable cart store. Save is the sole mutation primitive:
// it commits the whole aggregate only if the stored version still matches
// cart.Version, and returns domain.ErrVersionConflict otherwise.
type Repository interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Create(ctx context.Context, ownerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
}
