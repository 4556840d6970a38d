package cart

import (
	"context"
	"errors"
	"testing"

	"storefront-api/internal/domain"
)

const (
	itemA = "11111111-1111-1111-1111-111111111111"
	itemB = "22222222-2222-2222-2222-222222222222"
)

type stubCartRepo struct {
	cart          *domain.Cart
	getErr        error
	saveErr       error
	conflictsLeft int
	onConflict    func(s *stubCartRepo)
	createCalls   int
	saveCalls     int
}

func (s *stubCartRepo) Get(_ context.Context, ownerID string) (*domain.Cart, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.cart == nil {
		return nil, domain.ErrNotFound
	}
	cp := *s.cart
	cp.Lines = append([]domain.CartLine(nil), s.cart.Lines...)
	return &cp, nil
}

func (s *stubCartRepo) Create(_ context.Context, ownerID string) (*domain.Cart, error) {
	s.createCalls++
	if s.cart == nil {
		s.cart = &domain.Cart{ID: "cart-1", OwnerID: ownerID, Version: 1, Lines: []domain.CartLine{}}
	}
	cp := *s.cart
	return &cp, nil
}

func (s *stubCartRepo) Save(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	s.saveCalls++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		if s.onConflict != nil {
			s.onConflict(s)
		}
		return nil, domain.ErrVersionConflict
	}
	if s.cart != nil && cart.Version != s.cart.Version {
		return nil, domain.ErrVersionConflict
	}
	next := *cart
	next.Version = cart.Version + 1
	s.cart = &next
	cp := next
	return &cp, nil
}

type stubItemRepo struct {
	items    map[string]domain.Item
	getCalls int
}

func (s *stubItemRepo) GetByID(_ context.Context, id string) (*domain.Item, error) {
	s.getCalls++
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (s *stubItemRepo) GetByIDs(_ context.Context, ids []string) (map[string]domain.Item, error) {
	out := make(map[string]domain.Item)
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func newTestService(carts *stubCartRepo, items *stubItemRepo) *Service {
	return &Service{carts: carts, items: items, maxAttempts: 3}
}

func TestAddRejectsMalformedItemID(t *testing.T) {
	svc := newTestService(&stubCartRepo{}, &stubItemRepo{})
	_, err := svc.Add(context.Background(), "u1", "not-a-uuid", 1)
	if !errors.Is(err, domain.ErrInvalidItemID) {
		t.Fatalf("expected invalid item id, got %v", err)
	}
	_, err = svc.Add(context.Background(), "u1", "", 1)
	if !errors.Is(err, domain.ErrInvalidItemID) {
		t.Fatalf("expected invalid item id for empty string, got %v", err)
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(&stubCartRepo{}, &stubItemRepo{})
	_, err := svc.Add(context.Background(), "u1", itemA, 0)
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}

func TestAddItemNotFound(t *testing.T) {
	svc := newTestService(&stubCartRepo{}, &stubItemRepo{items: map[string]domain.Item{}})
	_, err := svc.Add(context.Background(), "u1", itemA, 1)
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
}

func TestAddToEmptyCart(t *testing.T) {
	carts := &stubCartRepo{}
	items := &stubItemRepo{items: map[string]domain.Item{
		itemA: {ID: itemA, PriceCents: 1000, Stock: 2},
	}}
	svc := newTestService(carts, items)

	cart, err := svc.Add(context.Background(), "u1", itemA, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 1 || cart.Lines[0].UnitPriceCents != 1000 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if cart.TotalCents != 1000 || cart.ItemCount != 1 {
		t.Fatalf("unexpected totals %d/%d", cart.TotalCents, cart.ItemCount)
	}
	if carts.createCalls != 1 {
		t.Fatalf("expected lazy cart creation, create calls = %d", carts.createCalls)
	}
}

func TestAddRetriesWithFreshItemRead(t *testing.T) {
	carts := &stubCartRepo{
		cart:          &domain.Cart{ID: "cart-1", OwnerID: "u1", Version: 1, Lines: []domain.CartLine{}},
		conflictsLeft: 1,
	}
	items := &stubItemRepo{items: map[string]domain.Item{
		itemA: {ID: itemA, PriceCents: 1000, Stock: 5},
	}}
	svc := newTestService(carts, items)

	cart, err := svc.Add(context.Background(), "u1", itemA, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected quantity %d", cart.Lines[0].Quantity)
	}
	if items.getCalls != 2 {
		t.Fatalf("expected item re-read per attempt, got %d reads", items.getCalls)
	}
	if carts.saveCalls != 2 {
		t.Fatalf("expected save retry, got %d saves", carts.saveCalls)
	}
}

func TestAddSurfacesConflictAfterBudget(t *testing.T) {
	carts := &stubCartRepo{
		cart:          &domain.Cart{ID: "cart-1", OwnerID: "u1", Version: 1, Lines: []domain.CartLine{}},
		conflictsLeft: 100,
	}
	items := &stubItemRepo{items: map[string]domain.Item{
		itemA: {ID: itemA, PriceCents: 1000, Stock: 5},
	}}
	svc := newTestService(carts, items)

	_, err := svc.Add(context.Background(), "u1", itemA, 1)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if carts.saveCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", carts.saveCalls)
	}
}

// Two concurrent adds race for the last unit: the loser retries against the
// committed cart and must observe the stock as taken.
func TestConcurrentAddLastUnit(t *testing.T) {
	carts := &stubCartRepo{
		cart:          &domain.Cart{ID: "cart-1", OwnerID: "u1", Version: 1, Lines: []domain.CartLine{}},
		conflictsLeft: 1,
	}
	carts.onConflict = func(s *stubCartRepo) {
		// the winning request committed the only unit
		s.cart = &domain.Cart{
			ID: "cart-1", OwnerID: "u1", Version: 2,
			Lines:      []domain.CartLine{{ItemID: itemA, Quantity: 1, UnitPriceCents: 1000}},
			TotalCents: 1000, ItemCount: 1,
		}
	}
	items := &stubItemRepo{items: map[string]domain.Item{
		itemA: {ID: itemA, PriceCents: 1000, Stock: 1},
	}}
	svc := newTestService(carts, items)

	_, err := svc.Add(context.Background(), "u1", itemA, 1)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock after retry, got %v", err)
	}
	if stockErr.Available != 0 {
		t.Fatalf("expected 0 available, got %d", stockErr.Available)
	}
	if carts.cart.Lines[0].Quantity != 1 {
		t.Fatalf("committed cart corrupted: %+v", carts.cart)
	}
}

func TestSetQuantityLineNotFound(t *testing.T) {
	carts := &stubCartRepo{cart: &domain.Cart{ID: "cart-1", OwnerID: "u1", Version: 1, Lines: []domain.CartLine{}}}
	items := &stubItemRepo{items: map[string]domain.Item{
		itemA: {ID: itemA, PriceCents: 1000, Stock: 5},
	}}
	svc := newTestService(carts, items)

	_, err := svc.SetQuantity(context.Background(), "u1", itemA, 2)
	if !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected line not found, got %v", err)
	}
}

func TestRemoveAbsentLineIsStable(t *testing.T) {
	carts := &stubCartRepo{cart: &domain.Cart{
		ID: "cart-1", OwnerID: "u1", Version: 1,
		Lines:      []domain.CartLine{{ItemID: itemB, Quantity: 2, UnitPriceCents: 500}},
		TotalCents: 1000, ItemCount: 2,
	}}
	svc := newTestService(carts, &stubItemRepo{})

	for i := 0; i < 2; i++ {
		_, err := svc.Remove(context.Background(), "u1", itemA)
		if !errors.Is(err, domain.ErrLineNotFound) {
			t.Fatalf("attempt %d: expected line not found, got %v", i, err)
		}
	}
	if carts.cart.TotalCents != 1000 || carts.cart.ItemCount != 2 {
		t.Fatalf("failed remove corrupted totals: %+v", carts.cart)
	}
}

func TestRemoveThenAddCrossesEmpty(t *testing.T) {
	carts := &stubCartRepo{cart: &domain.Cart{
		ID: "cart-1", OwnerID: "u1", Version: 1,
		Lines:      []domain.CartLine{{ItemID: itemA, Quantity: 1, UnitPriceCents: 1000}},
		TotalCents: 1000, ItemCount: 1,
	}}
	items := &stubItemRepo{items: map[string]domain.Item{
		itemA: {ID: itemA, PriceCents: 1000, Stock: 5},
	}}
	svc := newTestService(carts, items)

	cart, err := svc.Remove(context.Background(), "u1", itemA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 || cart.TotalCents != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}

	cart, err = svc.Add(context.Background(), "u1", itemA, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.ItemCount != 1 {
		t.Fatalf("expected item count 1, got %d", cart.ItemCount)
	}
}

func TestClearAlwaysSucceeds(t *testing.T) {
	carts := &stubCartRepo{cart: &domain.Cart{
		ID: "cart-1", OwnerID: "u1", Version: 3,
		Lines:      []domain.CartLine{{ItemID: itemA, Quantity: 4, UnitPriceCents: 250}},
		TotalCents: 1000, ItemCount: 4,
	}}
	svc := newTestService(carts, &stubItemRepo{})

	cart, err := svc.Clear(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 || cart.TotalCents != 0 || cart.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestGetCreatesCartLazily(t *testing.T) {
	carts := &stubCartRepo{}
	svc := newTestService(carts, &stubItemRepo{})

	cart, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 || cart.TotalCents != 0 {
		t.Fatalf("expected fresh empty cart, got %+v", cart)
	}
	if carts.createCalls != 1 {
		t.Fatalf("expected create call, got %d", carts.createCalls)
	}
	if carts.saveCalls != 0 {
		t.Fatalf("empty cart should not be re-saved, got %d saves", carts.saveCalls)
	}
}

func TestGetPrunesOutOfStockLine(t *testing.T) {
	carts := &stubCartRepo{cart: &domain.Cart{
		ID: "cart-1", OwnerID: "u1", Version: 1,
		Lines: []domain.CartLine{
			{ItemID: itemA, Quantity: 3, UnitPriceCents: 1000},
			{ItemID: itemB, Quantity: 1, UnitPriceCents: 500},
		},
		TotalCents: 3500, ItemCount: 4,
	}}
	items := &stubItemRepo{items: map[string]domain.Item{
		itemA: {ID: itemA, PriceCents: 1000, Stock: 0},
		itemB: {ID: itemB, PriceCents: 500, Stock: 9},
	}}
	svc := newTestService(carts, items)

	cart, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].ItemID != itemB {
		t.Fatalf("expected out-of-stock line pruned, got %+v", cart.Lines)
	}
	if cart.TotalCents != 500 || cart.ItemCount != 1 {
		t.Fatalf("unexpected totals %d/%d", cart.TotalCents, cart.ItemCount)
	}
	if carts.saveCalls != 1 {
		t.Fatalf("pruned cart should be persisted, got %d saves", carts.saveCalls)
	}
}

func TestGetPrunesDeletedItem(t *testing.T) {
	carts := &stubCartRepo{cart: &domain.Cart{
		ID: "cart-1", OwnerID: "u1", Version: 1,
		Lines:      []domain.CartLine{{ItemID: itemA, Quantity: 2, UnitPriceCents: 1000}},
		TotalCents: 2000, ItemCount: 2,
	}}
	svc := newTestService(carts, &stubItemRepo{items: map[string]domain.Item{}})

	cart, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 || cart.TotalCents != 0 || cart.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

// The read path deliberately does not clamp a quantity down to reduced but
// nonzero stock; only the write path enforces the ceiling.
func TestGetDoesNotClampQuantity(t *testing.T) {
	carts := &stubCartRepo{cart: &domain.Cart{
		ID: "cart-1", OwnerID: "u1", Version: 1,
		Lines:      []domain.CartLine{{ItemID: itemA, Quantity: 5, UnitPriceCents: 1000}},
		TotalCents: 5000, ItemCount: 5,
	}}
	items := &stubItemRepo{items: map[string]domain.Item{
		itemA: {ID: itemA, PriceCents: 1000, Stock: 2},
	}}
	svc := newTestService(carts, items)

	cart, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("quantity was clamped to %d", cart.Lines[0].Quantity)
	}
	if carts.saveCalls != 0 {
		t.Fatalf("unchanged cart should not be saved, got %d saves", carts.saveCalls)
	}
}

func TestGetPruneNeverFailsTheRead(t *testing.T) {
	carts := &stubCartRepo{
		cart: &domain.Cart{
			ID: "cart-1", OwnerID: "u1", Version: 1,
			Lines:      []domain.CartLine{{ItemID: itemA, Quantity: 1, UnitPriceCents: 1000}},
			TotalCents: 1000, ItemCount: 1,
		},
		conflictsLeft: 100,
	}
	svc := newTestService(carts, &stubItemRepo{items: map[string]domain.Item{}})

	cart, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("read must not fail on prune contention: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected pruned view, got %+v", cart.Lines)
	}
}
