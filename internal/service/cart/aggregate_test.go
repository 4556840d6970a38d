package cart

import (
	"errors"
	"testing"

	"storefront-api/internal/domain"
)

func checkDerived(t *testing.T, c domain.Cart) {
	t.Helper()
	var total int64
	count := 0
	seen := map[string]bool{}
	for _, line := range c.Lines {
		if line.Quantity < 1 {
			t.Fatalf("line %s has quantity %d", line.ItemID, line.Quantity)
		}
		if seen[line.ItemID] {
			t.Fatalf("duplicate line for item %s", line.ItemID)
		}
		seen[line.ItemID] = true
		total += line.UnitPriceCents * int64(line.Quantity)
		count += line.Quantity
	}
	if c.TotalCents != total {
		t.Fatalf("total %d, sum of lines %d", c.TotalCents, total)
	}
	if c.ItemCount != count {
		t.Fatalf("item count %d, sum of quantities %d", c.ItemCount, count)
	}
}

func TestAddNewLine(t *testing.T) {
	cart, err := addOrIncrement(domain.Cart{}, "item-a", 1, 1000, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	line := cart.Lines[0]
	if line.ItemID != "item-a" || line.Quantity != 1 || line.UnitPriceCents != 1000 {
		t.Fatalf("unexpected line %+v", line)
	}
	if cart.TotalCents != 1000 || cart.ItemCount != 1 {
		t.Fatalf("unexpected totals %d/%d", cart.TotalCents, cart.ItemCount)
	}
	checkDerived(t, cart)
}

func TestAddIncrementsExistingLine(t *testing.T) {
	cart, err := addOrIncrement(domain.Cart{}, "item-a", 2, 1000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err = addOrIncrement(cart, "item-a", 3, 1000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Lines[0].Quantity)
	}
	checkDerived(t, cart)
}

func TestAddRefreshesPriceOnTouch(t *testing.T) {
	cart, _ := addOrIncrement(domain.Cart{}, "item-a", 1, 1000, 10)
	cart, err := addOrIncrement(cart, "item-a", 1, 1200, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].UnitPriceCents != 1200 {
		t.Fatalf("expected refreshed price 1200, got %d", cart.Lines[0].UnitPriceCents)
	}
	if cart.TotalCents != 2400 {
		t.Fatalf("expected total 2400, got %d", cart.TotalCents)
	}
}

func TestAddExhaustsStockExactly(t *testing.T) {
	cart, err := addOrIncrement(domain.Cart{}, "item-a", 5, 1000, 5)
	if err != nil {
		t.Fatalf("adding full stock should succeed: %v", err)
	}
	_, err = addOrIncrement(cart, "item-a", 1, 1000, 5)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if stockErr.Available != 0 {
		t.Fatalf("expected 0 available, got %d", stockErr.Available)
	}
}

func TestAddNewLineInsufficientStock(t *testing.T) {
	_, err := addOrIncrement(domain.Cart{}, "item-a", 3, 1000, 2)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if stockErr.Available != 2 {
		t.Fatalf("expected 2 available, got %d", stockErr.Available)
	}
}

func TestAddIncrementReportsRemainingHeadroom(t *testing.T) {
	cart, _ := addOrIncrement(domain.Cart{}, "item-a", 3, 1000, 5)
	_, err := addOrIncrement(cart, "item-a", 4, 1000, 5)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	// "how many more you can add", not the raw stock
	if stockErr.Available != 2 {
		t.Fatalf("expected 2 available, got %d", stockErr.Available)
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	orig, _ := addOrIncrement(domain.Cart{}, "item-a", 1, 1000, 10)
	if _, err := addOrIncrement(orig, "item-a", 2, 1500, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orig.Lines[0].Quantity != 1 || orig.Lines[0].UnitPriceCents != 1000 {
		t.Fatalf("input cart mutated: %+v", orig.Lines[0])
	}
}

func TestSetQuantity(t *testing.T) {
	cart, _ := addOrIncrement(domain.Cart{}, "item-a", 1, 1000, 10)
	cart, err := setQuantity(cart, "item-a", 4, 1100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].Quantity != 4 || cart.Lines[0].UnitPriceCents != 1100 {
		t.Fatalf("unexpected line %+v", cart.Lines[0])
	}
	checkDerived(t, cart)
}

func TestSetQuantityMatchesAddForSameTarget(t *testing.T) {
	viaAdd, err := addOrIncrement(domain.Cart{}, "item-a", 2, 1000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	viaSet, err := setQuantity(viaAdd, "item-a", 2, 1000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if viaSet.Lines[0] != viaAdd.Lines[0] || viaSet.TotalCents != viaAdd.TotalCents || viaSet.ItemCount != viaAdd.ItemCount {
		t.Fatalf("set to same quantity changed the cart: %+v vs %+v", viaSet, viaAdd)
	}
}

func TestSetQuantityValidation(t *testing.T) {
	cart, _ := addOrIncrement(domain.Cart{}, "item-a", 1, 1000, 10)

	if _, err := setQuantity(cart, "item-a", 0, 1000, 10); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := setQuantity(cart, "item-b", 1, 1000, 10); !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected line not found, got %v", err)
	}
}

func TestSetQuantityInsufficientStockLeavesCart(t *testing.T) {
	cart, _ := addOrIncrement(domain.Cart{}, "item-a", 2, 1000, 3)
	_, err := setQuantity(cart, "item-a", 4, 1000, 3)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if stockErr.Available != 3 {
		t.Fatalf("expected 3 available, got %d", stockErr.Available)
	}
	if cart.Lines[0].Quantity != 2 {
		t.Fatalf("prior quantity changed to %d", cart.Lines[0].Quantity)
	}
}

func TestRemoveLine(t *testing.T) {
	cart, _ := addOrIncrement(domain.Cart{}, "item-a", 1, 1000, 10)
	cart, _ = addOrIncrement(cart, "item-b", 2, 500, 10)

	cart, err := removeLine(cart, "item-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].ItemID != "item-b" {
		t.Fatalf("unexpected lines %+v", cart.Lines)
	}
	checkDerived(t, cart)

	if _, err := removeLine(cart, "item-a"); !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected line not found on second remove, got %v", err)
	}
	if _, err := removeLine(cart, "item-a"); !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected line not found on third remove, got %v", err)
	}
	checkDerived(t, cart)
}

func TestClear(t *testing.T) {
	cart, _ := addOrIncrement(domain.Cart{}, "item-a", 3, 1000, 10)
	cart = clearLines(cart)
	if len(cart.Lines) != 0 || cart.TotalCents != 0 || cart.ItemCount != 0 {
		t.Fatalf("clear left state behind: %+v", cart)
	}
	cart = clearLines(cart)
	if len(cart.Lines) != 0 {
		t.Fatalf("clearing an empty cart should stay empty")
	}
}

func TestDerivedTotalsAcrossSequence(t *testing.T) {
	cart := domain.Cart{}
	var err error
	steps := []func(domain.Cart) (domain.Cart, error){
		func(c domain.Cart) (domain.Cart, error) { return addOrIncrement(c, "a", 1, 999, 50) },
		func(c domain.Cart) (domain.Cart, error) { return addOrIncrement(c, "b", 3, 250, 50) },
		func(c domain.Cart) (domain.Cart, error) { return setQuantity(c, "a", 5, 888, 50) },
		func(c domain.Cart) (domain.Cart, error) { return addOrIncrement(c, "c", 2, 10000, 50) },
		func(c domain.Cart) (domain.Cart, error) { return removeLine(c, "b") },
		func(c domain.Cart) (domain.Cart, error) { return addOrIncrement(c, "a", 1, 900, 50) },
	}
	for i, step := range steps {
		cart, err = step(cart)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		checkDerived(t, cart)
	}
}
