package domain

import "strings"

// Product represents a product in the storefront catalog.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
}

// CategoryAll matches every category in a filter.
const CategoryAll = "all"

// Matches reports whether the product passes the given filter: a
// case-insensitive substring match on the name, an exact category match
// ("all" matches everything), and a price ceiling (zero or negative means
// unbounded).
func (p Product) Matches(search, category string, maxPrice float64) bool {
	if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
		return false
	}
	if category != "" && category != CategoryAll && p.Category != category {
		return false
	}
	if maxPrice > 0 && p.Price > maxPrice {
		return false
	}
	return true
}
