package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Highlight is a distinguishing label assigned per ranked batch
type Highlight string

const (
	HighlightTopPick         Highlight = "top_pick"
	HighlightBestValue       Highlight = "best_value"
	HighlightFastestDelivery Highlight = "fastest_delivery"
)

// DeliveryEstimate describes how an item reaches the shopper
type DeliveryEstimate struct {
	Available bool            `json:"available"`
	ETA       string          `json:"eta,omitempty"`      // label, e.g. "2-3 days"
	ETADays   int             `json:"eta_days,omitempty"` // lower bound in days, for scoring
	Cost      decimal.Decimal `json:"cost"`
}

// Item is one product offer from one source. Adapters create it in raw
// form; MatchScore, Explanation and Highlights are filled in by the
// scoring engine and by nothing else.
type Item struct {
	Source        SourceID          `json:"source"`
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Brand         string            `json:"brand,omitempty"`
	Price         decimal.Decimal   `json:"price"`
	OriginalPrice *decimal.Decimal  `json:"original_price,omitempty"`
	Currency      string            `json:"currency"`
	ImageURL      string            `json:"image_url,omitempty"`
	Description   string            `json:"description,omitempty"`
	Specs         map[string]string `json:"specs,omitempty"`
	InStock       bool              `json:"in_stock"`
	Delivery      DeliveryEstimate  `json:"delivery"`
	Rating        float64           `json:"rating"`
	ReviewCount   int               `json:"review_count"`
	MatchScore    float64           `json:"match_score"` // 0..100, set by scoring
	Explanation   string            `json:"explanation,omitempty"`
	Highlights    []Highlight       `json:"highlights,omitempty"`
	URL           string            `json:"url,omitempty"`
	FetchedAt     time.Time         `json:"fetched_at"`
}

// Key returns the item identity across sources
func (i *Item) Key() string {
	return string(i.Source) + ":" + i.ID
}
