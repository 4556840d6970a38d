package cart

import (
	"storefront-api/internal/domain"
)

// Pure transitions over the cart aggregate. Each takes the current cart value
// plus the item state read for this attempt and returns the next cart value
// with totals recomputed, without touching the input. Persistence and
// concurrency control live in Service.

func addOrIncrement(c domain.Cart, itemID string, deltaQty int, unitPriceCents int64, stock int) (domain.Cart, error) {
	next := cloneLines(c)
	idx := next.Line(itemID)
	if idx < 0 {
		if deltaQty > stock {
			return domain.Cart{}, &domain.InsufficientStockError{Available: stock}
		}
		next.Lines = append(next.Lines, domain.CartLine{
			ItemID:         itemID,
			Quantity:       deltaQty,
			UnitPriceCents: unitPriceCents,
		})
		return recomputeTotals(next), nil
	}

	held := next.Lines[idx].Quantity
	if held+deltaQty > stock {
		return domain.Cart{}, &domain.InsufficientStockError{Available: stock - held}
	}
	next.Lines[idx].Quantity = held + deltaQty
	// Refresh-on-touch: the stored price snapshot follows the item's current
	// price whenever the line is written.
	next.Lines[idx].UnitPriceCents = unitPriceCents
	return recomputeTotals(next), nil
}

func setQuantity(c domain.Cart, itemID string, quantity int, unitPriceCents int64, stock int) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	next := cloneLines(c)
	idx := next.Line(itemID)
	if idx < 0 {
		return domain.Cart{}, domain.ErrLineNotFound
	}
	if quantity > stock {
		return domain.Cart{}, &domain.InsufficientStockError{Available: stock}
	}
	next.Lines[idx].Quantity = quantity
	next.Lines[idx].UnitPriceCents = unitPriceCents
	return recomputeTotals(next), nil
}

func removeLine(c domain.Cart, itemID string) (domain.Cart, error) {
	idx := c.Line(itemID)
	if idx < 0 {
		return domain.Cart{}, domain.ErrLineNotFound
	}
	next := cloneLines(c)
	next.Lines = append(next.Lines[:idx], next.Lines[idx+1:]...)
	return recomputeTotals(next), nil
}

func clearLines(c domain.Cart) domain.Cart {
	next := c
	next.Lines = []domain.CartLine{}
	return recomputeTotals(next)
}

// recomputeTotals folds the lines into TotalCents and ItemCount. Stored
// totals are never trusted on a mutated path.
func recomputeTotals(c domain.Cart) domain.Cart {
	var total int64
	count := 0
	for _, line := range c.Lines {
		total += line.UnitPriceCents * int64(line.Quantity)
		count += line.Quantity
	}
	c.TotalCents = total
	c.ItemCount = count
	return c
}

func cloneLines(c domain.Cart) domain.Cart {
	next := c
	next.Lines = make([]domain.CartLine, len(c.Lines))
	copy(next.Lines, c.Lines)
	return next
}
