package entities

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string
	Name      string
	SKU       string
	Price     decimal.Decimal
	Inventory int
	IsActive  bool
}

// ProductSnapshot is the authoritative price and stock of a product at read time.
type ProductSnapshot struct {
	ProductID      string
	Name           string
	SKU            string
	Price          decimal.Decimal
	AvailableStock int
}

type CartLine struct {
	ProductID string
	Quantity  int
}

// MergeLines folds duplicate product lines together, keeping first-seen order.
func MergeLines(lines []CartLine) []CartLine {
	idx := make(map[string]int, len(lines))
	merged := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

// StockChange is one product decrement inside a completion.
type StockChange struct {
	ProductID string
	Quantity  int
}

// SortedStockChanges returns decrements ordered by product id so concurrent
// completions always lock product rows in the same order.
func SortedStockChanges(quantities map[string]int) []StockChange {
	res := make([]StockChange, 0, len(quantities))
	for id, q := range quantities {
		res = append(res, StockChange{ProductID: id, Quantity: q})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ProductID < res[j].ProductID })
	return res
}
