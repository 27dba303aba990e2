package types

import (
	"github.com/shopspring/decimal"
)

// BudgetRange is the price band a shopper is willing to pay
type BudgetRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Contains reports whether price falls inside the band (inclusive)
func (b *BudgetRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(b.Min) && price.LessThanOrEqual(b.Max)
}

// QueryFilters narrows a search beyond free text
type QueryFilters struct {
	Brands []string          `json:"brands,omitempty"`
	Sizes  []string          `json:"sizes,omitempty"`
	Colors []string          `json:"colors,omitempty"`
	Specs  map[string]string `json:"specs,omitempty"`
}

// Query is one submitted product search. It is treated as immutable
// once it enters the orchestrator: every component reads it, nothing
// writes it back.
type Query struct {
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	Pincode    string       `json:"pincode"`
	Budget     *BudgetRange `json:"budget,omitempty"`
	Filters    QueryFilters `json:"filters"`
	Features   []string     `json:"features,omitempty"` // extracted keywords
	Confidence float64      `json:"confidence"`         // extraction confidence, 0..1
}
