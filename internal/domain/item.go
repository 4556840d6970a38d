package domain

import "time"

// Item is a catalog product. PriceCents is the live price; carts snapshot it
// into their lines at write time. Stock is a shared advisory counter checked
// by cart writes but never reserved by them.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ItemCategories is the closed set of catalog categories, mirrored by a
// CHECK constraint on the items table.
var ItemCategories = []string{
	"Electronics",
	"Clothing",
	"Books",
	"Home",
	"Sports",
	"Beauty",
	"Other",
}

func ValidCategory(category string) bool {
	for _, c := range ItemCategories {
		if c == category {
			return true
		}
	}
	return false
}
