package domain

import "time"

// Cart is one owner's cart aggregate. TotalCents and ItemCount are derived
// from Lines and recomputed on every mutation before the cart is persisted.
// Version backs the optimistic write check in the cart repository.
type Cart struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"-"`
	Version    int64      `json:"-"`
	Lines      []CartLine `json:"items"`
	TotalCents int64      `json:"totalAmountCents"`
	ItemCount  int        `json:"itemCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CartLine holds one item entry. UnitPriceCents is a snapshot of the item's
// price taken when the line was last written, not a live join to the item.
type CartLine struct {
	ItemID         string `json:"itemId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// Line returns the index of the line holding itemID, or -1.
func (c *Cart) Line(itemID string) int {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}
