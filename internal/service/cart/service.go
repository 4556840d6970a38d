package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront-api/internal/domain"
	cartrepo "storefront-api/internal/repository/cart"
	itemrepo "storefront-api/internal/repository/item"

	"github.com/google/uuid"
)

// Service sequences fetch item -> fetch-or-create cart -> pure transition ->
// conditional write as one logical transaction per request. Concurrent
// mutations for the same owner are serialized by the optimistic version
// check: a lost write retries from a fresh read, so at most one commit wins
// per pre-mutation cart version.
//
// Stock is advisory at validation time and never reserved. Two different
// owners racing for the last unit can both pass the check and oversell;
// that is inherent to per-owner-only concurrency control and is left as is.
type Service struct {
	carts       cartRepo
	items       itemRepo
	maxAttempts int
}

type cartRepo interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Create(ctx context.Context, ownerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
}

type itemRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Item, error)
}

const defaultMaxAttempts = 3

func New(carts cartrepo.Repository, items itemrepo.Repository, maxAttempts int) *Service {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &Service{carts: carts, items: items, maxAttempts: maxAttempts}
}

// Add adds qty units of an item to the owner's cart, or increments the
// existing line. The line's price snapshot is refreshed from the item.
func (s *Service) Add(ctx context.Context, ownerID, itemID string, qty int) (*domain.Cart, error) {
	if err := validateItemID(itemID); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	return s.mutate(ctx, ownerID, func(cart domain.Cart) (domain.Cart, error) {
		// Item state is re-read on every attempt: stock moves fast and a
		// stale read here is exactly the bug class the retry loop exists for.
		item, err := s.lookupItem(ctx, itemID)
		if err != nil {
			return domain.Cart{}, err
		}
		return addOrIncrement(cart, item.ID, qty, item.PriceCents, item.Stock)
	})
}

// SetQuantity overwrites the quantity of an existing line, refreshing its
// price snapshot. The line must already be in the cart.
func (s *Service) SetQuantity(ctx context.Context, ownerID, itemID string, qty int) (*domain.Cart, error) {
	if err := validateItemID(itemID); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	return s.mutate(ctx, ownerID, func(cart domain.Cart) (domain.Cart, error) {
		item, err := s.lookupItem(ctx, itemID)
		if err != nil {
			return domain.Cart{}, err
		}
		return setQuantity(cart, item.ID, qty, item.PriceCents, item.Stock)
	})
}

// Remove deletes the line for itemID. Removing an absent line reports
// ErrLineNotFound and leaves the cart untouched.
func (s *Service) Remove(ctx context.Context, ownerID, itemID string) (*domain.Cart, error) {
	if err := validateItemID(itemID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, func(cart domain.Cart) (domain.Cart, error) {
		return removeLine(cart, itemID)
	})
}

// Clear empties the owner's cart.
func (s *Service) Clear(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart domain.Cart) (domain.Cart, error) {
		return clearLines(cart), nil
	})
}

// Get returns the owner's cart, creating an empty one on first read. Lines
// whose item no longer exists or is out of stock are pruned, and the pruned
// cart is persisted best-effort. Pruning never fails the read: if the
// conditional write keeps losing, the pruned snapshot is returned unsaved.
// A quantity that merely exceeds reduced-but-nonzero stock is left alone;
// only the write path enforces the stock ceiling.
func (s *Service) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var pruned *domain.Cart
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		cart, err := s.getOrCreate(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if len(cart.Lines) == 0 {
			return cart, nil
		}

		next, changed, err := s.prune(ctx, *cart)
		if err != nil {
			return nil, err
		}
		if !changed {
			return cart, nil
		}

		saved, err := s.carts.Save(ctx, &next)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		pruned = &next
	}
	return pruned, nil
}

// mutate runs the optimistic-retry loop shared by all mutations. transition
// is re-invoked on every attempt so collaborator reads inside it stay fresh.
func (s *Service) mutate(ctx context.Context, ownerID string, transition func(domain.Cart) (domain.Cart, error)) (*domain.Cart, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		cart, err := s.getOrCreate(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		next, err := transition(*cart)
		if err != nil {
			return nil, err
		}

		saved, err := s.carts.Save(ctx, &next)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, domain.ErrConflict
}

func (s *Service) getOrCreate(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, ownerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.carts.Create(ctx, ownerID)
}

func (s *Service) lookupItem(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("lookup item: %w", err)
	}
	return item, nil
}

func (s *Service) prune(ctx context.Context, cart domain.Cart) (domain.Cart, bool, error) {
	ids := make([]string, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		ids = append(ids, line.ItemID)
	}
	items, err := s.items.GetByIDs(ctx, ids)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("lookup items: %w", err)
	}

	kept := make([]domain.CartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		item, ok := items[line.ItemID]
		if !ok || item.Stock == 0 {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == len(cart.Lines) {
		return cart, false, nil
	}

	next := cart
	next.Lines = kept
	return recomputeTotals(next), true, nil
}

func validateItemID(itemID string) error {
	if itemID == "" {
		return domain.ErrInvalidItemID
	}
	if err := uuid.Validate(itemID); err != nil {
		return domain.ErrInvalidItemID
	}
	return nil
}
