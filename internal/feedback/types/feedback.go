package types

import "time"

// Verdict is the shopper's relevance judgement for one item
type Verdict string

const (
	VerdictRelevant    Verdict = "relevant"
	VerdictNotRelevant Verdict = "not_relevant"
)

// Valid reports whether the verdict is one of the recognized values
func (v Verdict) Valid() bool {
	return v == VerdictRelevant || v == VerdictNotRelevant
}

// Event is one relevance signal. Events are append-only: once accepted
// they are never mutated or deleted.
type Event struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	QueryID   string    `json:"query_id"`
	Verdict   Verdict   `json:"verdict"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary holds whole-log counts and rates
type Summary struct {
	Total            int     `json:"total"`
	Relevant         int     `json:"relevant"`
	NotRelevant      int     `json:"not_relevant"`
	RelevanceRate    float64 `json:"relevance_rate"`     // percent, 2 decimals
	Last24hTotal     int     `json:"last_24h_total"`
	Last24hRelevant  int     `json:"last_24h_relevant"`
}

// EntityBreakdown aggregates events for one item or one query
type EntityBreakdown struct {
	ID            string  `json:"id"`
	Total         int     `json:"total"`
	Relevant      int     `json:"relevant"`
	RelevanceRate float64 `json:"relevance_rate"` // percent, 2 decimals
}

// TrendDirection compares this week's relevance rate with last week's
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// Trend is the trailing 7-day vs prior-7-day comparison
type Trend struct {
	ThisWeekRate float64        `json:"this_week_rate"` // percent, 2 decimals
	LastWeekRate float64        `json:"last_week_rate"` // percent, 2 decimals
	Direction    TrendDirection `json:"direction"`
	Magnitude    float64        `json:"magnitude"` // percentage points, 2 decimals
}

// Analytics is the rolling view recomputed from the full event log
type Analytics struct {
	Summary Summary           `json:"summary"`
	ByItem  []EntityBreakdown `json:"by_item"`
	ByQuery []EntityBreakdown `json:"by_query"`
	Trend   Trend             `json:"trend"`
}
