package biz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/shopscout/shopscout-backend/internal/search/types"
	"go.uber.org/zap"
)

// Weights is the scoring configuration. The four components are
// combined as a weighted sum and normalized into [0,100]; tuning the
// weights reshapes ranking without code change.
type Weights struct {
	BudgetFit     float64 `mapstructure:"budget_fit"`
	FeatureMatch  float64 `mapstructure:"feature_match"`
	DeliverySpeed float64 `mapstructure:"delivery_speed"`
	Trust         float64 `mapstructure:"trust"`
}

// DefaultWeights returns the default scoring weights
func DefaultWeights() Weights {
	return Weights{
		BudgetFit:     0.35,
		FeatureMatch:  0.30,
		DeliverySpeed: 0.20,
		Trust:         0.15,
	}
}

func (w Weights) sum() float64 {
	return w.BudgetFit + w.FeatureMatch + w.DeliverySpeed + w.Trust
}

// Engine scores, ranks and annotates aggregated items. It is the only
// component that writes MatchScore, Explanation and Highlights.
type Engine struct {
	mu      sync.RWMutex
	weights Weights
	logger  *zap.Logger
}

// NewEngine creates a scoring engine
func NewEngine(weights Weights, logger *zap.Logger) *Engine {
	if weights.sum() <= 0 {
		weights = DefaultWeights()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{weights: weights, logger: logger}
}

// Weights returns the current scoring weights
func (e *Engine) Weights() Weights {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weights
}

// SetWeights replaces the scoring weights
func (e *Engine) SetWeights(w Weights) {
	if w.sum() <= 0 {
		return
	}
	e.mu.Lock()
	e.weights = w
	e.mu.Unlock()
}

// components are the normalized [0,1] inputs to the weighted sum
type components struct {
	budget   float64
	feature  float64
	delivery float64
	trust    float64
}

// Score computes the match score for one item in isolation. Delivery
// speed uses an absolute day scale here; Rank substitutes the
// batch-relative normalization.
func (e *Engine) Score(item *types.Item, query *types.Query) float64 {
	c := e.componentsFor(item, query, absoluteDeliveryScore(item))
	return e.combine(c)
}

// Explain renders the top contributing reasons for an item's score
func (e *Engine) Explain(item *types.Item, query *types.Query) string {
	c := e.componentsFor(item, query, absoluteDeliveryScore(item))
	return e.explain(item, query, c)
}

// Rank scores every item against the query and returns them in stable
// descending score order. Ties break by rating, then review count.
// MatchScore and Explanation are written onto the items as a side
// effect; delivery speed is normalized against the batch.
func (e *Engine) Rank(items []*types.Item, query *types.Query) []*types.Item {
	if len(items) == 0 {
		return items
	}

	deliveryNorm := batchDeliveryScores(items)
	for i, item := range items {
		c := e.componentsFor(item, query, deliveryNorm[i])
		item.MatchScore = e.combine(c)
		item.Explanation = e.explain(item, query, c)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].MatchScore != items[j].MatchScore {
			return items[i].MatchScore > items[j].MatchScore
		}
		if items[i].Rating != items[j].Rating {
			return items[i].Rating > items[j].Rating
		}
		return items[i].ReviewCount > items[j].ReviewCount
	})

	return items
}

// AssignHighlights labels distinguishing items in an already-ranked
// batch. Ties resolve to the earliest item in rank order; an empty
// batch yields no highlights.
func (e *Engine) AssignHighlights(items []*types.Item) []*types.Item {
	if len(items) == 0 {
		return items
	}

	for _, item := range items {
		item.Highlights = nil
	}

	// top_pick: maximum score, which is the head after Rank
	top := items[0]
	for _, item := range items[1:] {
		if item.MatchScore > top.MatchScore {
			top = item
		}
	}
	top.Highlights = append(top.Highlights, types.HighlightTopPick)

	// best_value: lowest price-to-rating ratio among rated items
	var bestValue *types.Item
	var bestRatio decimal.Decimal
	for _, item := range items {
		if item.Rating <= 0 || !item.Price.IsPositive() {
			continue
		}
		ratio := item.Price.Div(decimal.NewFromFloat(item.Rating))
		if bestValue == nil || ratio.LessThan(bestRatio) {
			bestValue = item
			bestRatio = ratio
		}
	}
	if bestValue != nil {
		bestValue.Highlights = append(bestValue.Highlights, types.HighlightBestValue)
	}

	// fastest_delivery: shortest known ETA
	var fastest *types.Item
	for _, item := range items {
		if !item.Delivery.Available || item.Delivery.ETADays <= 0 {
			continue
		}
		if fastest == nil || item.Delivery.ETADays < fastest.Delivery.ETADays {
			fastest = item
		}
	}
	if fastest != nil {
		fastest.Highlights = append(fastest.Highlights, types.HighlightFastestDelivery)
	}

	return items
}

func (e *Engine) componentsFor(item *types.Item, query *types.Query, deliveryScore float64) components {
	return components{
		budget:   budgetFitScore(item, query),
		feature:  featureMatchScore(item, query),
		delivery: deliveryScore,
		trust:    trustScore(item),
	}
}

// combine folds the components into [0,100]
func (e *Engine) combine(c components) float64 {
	w := e.Weights()
	raw := (c.budget*w.BudgetFit + c.feature*w.FeatureMatch +
		c.delivery*w.DeliverySpeed + c.trust*w.Trust) / w.sum()
	score := raw * 100
	return math.Min(100, math.Max(0, math.Round(score*100)/100))
}

// budgetFitScore gives full credit inside the budget band and lets
// credit decay smoothly with the relative distance outside it. A query
// without a budget scores every price neutrally.
func budgetFitScore(item *types.Item, query *types.Query) float64 {
	if query.Budget == nil {
		return 0.5
	}
	if query.Budget.Contains(item.Price) {
		return 1
	}

	var bound, dist decimal.Decimal
	if item.Price.GreaterThan(query.Budget.Max) {
		bound = query.Budget.Max
		dist = item.Price.Sub(query.Budget.Max)
	} else {
		bound = query.Budget.Min
		dist = query.Budget.Min.Sub(item.Price)
	}
	if !bound.IsPositive() {
		return 0
	}

	rel, _ := dist.Div(bound).Float64()
	return 1 / (1 + 3*rel)
}

// featureMatchScore measures keyword overlap between the query's
// extracted features (plus brand and color filters) and the item's
// name, description and specs.
func featureMatchScore(item *types.Item, query *types.Query) float64 {
	wanted := make([]string, 0, len(query.Features)+len(query.Filters.Brands)+len(query.Filters.Colors))
	wanted = append(wanted, query.Features...)
	wanted = append(wanted, query.Filters.Brands...)
	wanted = append(wanted, query.Filters.Colors...)
	if len(wanted) == 0 {
		return 0.5
	}

	haystack := strings.ToLower(item.Name + " " + item.Brand + " " + item.Description)
	for k, v := range item.Specs {
		haystack += " " + strings.ToLower(k) + " " + strings.ToLower(v)
	}

	matched := 0
	for _, w := range wanted {
		if strings.Contains(haystack, strings.ToLower(w)) {
			matched++
		}
	}
	return float64(matched) / float64(len(wanted))
}

// absoluteDeliveryScore maps ETA days onto [0,1] without batch context
func absoluteDeliveryScore(item *types.Item) float64 {
	if !item.Delivery.Available || item.Delivery.ETADays <= 0 {
		return 0
	}
	score := 1 - float64(item.Delivery.ETADays-1)/9
	return math.Min(1, math.Max(0, score))
}

// batchDeliveryScores normalizes ETA within the batch: the fastest
// item gets 1, the slowest 0. Items without delivery info get 0.
func batchDeliveryScores(items []*types.Item) []float64 {
	min, max := math.MaxInt32, 0
	for _, item := range items {
		if !item.Delivery.Available || item.Delivery.ETADays <= 0 {
			continue
		}
		if item.Delivery.ETADays < min {
			min = item.Delivery.ETADays
		}
		if item.Delivery.ETADays > max {
			max = item.Delivery.ETADays
		}
	}

	scores := make([]float64, len(items))
	for i, item := range items {
		if !item.Delivery.Available || item.Delivery.ETADays <= 0 {
			continue
		}
		if max == min {
			scores[i] = 1
			continue
		}
		scores[i] = float64(max-item.Delivery.ETADays) / float64(max-min)
	}
	return scores
}

// trustScore multiplies the star rating by a review-volume factor, so
// a 4.8 with three reviews does not outrank a 4.6 with two thousand.
func trustScore(item *types.Item) float64 {
	if item.Rating <= 0 {
		return 0
	}
	ratingScore := item.Rating / 5
	volume := math.Min(1, math.Log1p(float64(item.ReviewCount))/math.Log(501))
	return ratingScore * (0.3 + 0.7*volume)
}

// reason pairs a rendered explanation fragment with its weighted
// contribution, for ordering.
type reason struct {
	text   string
	weight float64
}

// explain renders "Recommended because ..." from the top contributing
// components in descending weighted order. Components that contributed
// little are left out rather than padded with generic filler.
func (e *Engine) explain(item *types.Item, query *types.Query, c components) string {
	w := e.Weights()
	var reasons []reason

	if query.Budget != nil && c.budget >= 0.99 {
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("it fits your budget of ₹%s–₹%s", query.Budget.Min.StringFixed(0), query.Budget.Max.StringFixed(0)),
			weight: c.budget * w.BudgetFit,
		})
	} else if query.Budget != nil && c.budget >= 0.6 {
		reasons = append(reasons, reason{
			text:   "its price is close to your budget",
			weight: c.budget * w.BudgetFit,
		})
	}

	if len(query.Features) > 0 && c.feature >= 0.5 {
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("it matches what you asked for (%s)", strings.Join(topMatches(item, query, 3), ", ")),
			weight: c.feature * w.FeatureMatch,
		})
	}

	if c.delivery >= 0.5 && item.Delivery.ETADays > 0 {
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("it can reach you in about %d days", item.Delivery.ETADays),
			weight: c.delivery * w.DeliverySpeed,
		})
	}

	if c.trust >= 0.5 {
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("buyers rate it %.1f stars across %d reviews", item.Rating, item.ReviewCount),
			weight: c.trust * w.Trust,
		})
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("Closest available match for %q from %s", query.Text, item.Source)
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].weight > reasons[j].weight
	})
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}

	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = r.text
	}
	return "Recommended because " + strings.Join(parts, "; ")
}

// topMatches lists up to n query features actually present in the item
func topMatches(item *types.Item, query *types.Query, n int) []string {
	haystack := strings.ToLower(item.Name + " " + item.Brand + " " + item.Description)
	var matched []string
	for _, f := range query.Features {
		if strings.Contains(haystack, strings.ToLower(f)) {
			matched = append(matched, f)
			if len(matched) == n {
				break
			}
		}
	}
	if len(matched) == 0 {
		matched = append(matched, "your search")
	}
	return matched
}
