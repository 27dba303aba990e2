package biz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopscout/shopscout-backend/internal/search/types"
)

func testQuery(budgetMin, budgetMax int64, features ...string) *types.Query {
	q := &types.Query{
		ID:       "q-test",
		Text:     "test query",
		Features: features,
	}
	if budgetMax > 0 {
		q.Budget = &types.BudgetRange{
			Min: decimal.NewFromInt(budgetMin),
			Max: decimal.NewFromInt(budgetMax),
		}
	}
	return q
}

func testItem(source types.SourceID, id string, price int64, rating float64, reviews int, etaDays int) *types.Item {
	return &types.Item{
		Source:      source,
		ID:          id,
		Name:        "Test Product " + id,
		Price:       decimal.NewFromInt(price),
		Currency:    "INR",
		InStock:     true,
		Rating:      rating,
		ReviewCount: reviews,
		Delivery: types.DeliveryEstimate{
			Available: etaDays > 0,
			ETADays:   etaDays,
		},
	}
}

func TestNewEngine_FallsBackToDefaultWeights(t *testing.T) {
	e := NewEngine(Weights{}, nil)
	assert.Equal(t, DefaultWeights(), e.Weights())
}

func TestEngine_SetWeights(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)

	custom := Weights{BudgetFit: 0.5, FeatureMatch: 0.2, DeliverySpeed: 0.2, Trust: 0.1}
	e.SetWeights(custom)
	assert.Equal(t, custom, e.Weights())

	// a degenerate update is ignored
	e.SetWeights(Weights{})
	assert.Equal(t, custom, e.Weights())
}

func TestEngine_Score_Bounds(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)

	tests := []struct {
		name string
		item *types.Item
	}{
		{"strong item", testItem(types.SourceAmazon, "a1", 1500, 4.8, 2000, 1)},
		{"weak item", testItem(types.SourceCroma, "c1", 99999, 0, 0, 0)},
		{"unrated mid item", testItem(types.SourceFlipkart, "f1", 2000, 0, 0, 5)},
	}

	query := testQuery(1000, 2000, "wireless", "noise cancelling")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := e.Score(tt.item, query)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		})
	}
}

func TestEngine_Score_BudgetPreference(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	query := testQuery(1000, 2000)

	inBudget := testItem(types.SourceAmazon, "a1", 1500, 4.0, 100, 3)
	overBudget := testItem(types.SourceAmazon, "a2", 6000, 4.0, 100, 3)

	assert.Greater(t, e.Score(inBudget, query), e.Score(overBudget, query))
}

func TestEngine_Rank_Order(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	query := testQuery(1000, 2000, "wireless")

	good := testItem(types.SourceAmazon, "a1", 1500, 4.6, 1800, 2)
	good.Name = "Wireless Headphones"
	bad := testItem(types.SourceCroma, "c1", 9000, 3.1, 4, 9)

	ranked := e.Rank([]*types.Item{bad, good}, query)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a1", ranked[0].ID)
	assert.Greater(t, ranked[0].MatchScore, ranked[1].MatchScore)
}

func TestEngine_Rank_WritesScoreAndExplanation(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	query := testQuery(1000, 2000, "wireless")

	item := testItem(types.SourceAmazon, "a1", 1500, 4.5, 500, 2)
	item.Name = "Wireless Earbuds"

	ranked := e.Rank([]*types.Item{item}, query)
	require.Len(t, ranked, 1)
	assert.Greater(t, ranked[0].MatchScore, 0.0)
	assert.NotEmpty(t, ranked[0].Explanation)
}

func TestEngine_Rank_StableOnTies(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	query := testQuery(0, 0)

	// identical items keep their input order
	items := make([]*types.Item, 4)
	for i := range items {
		items[i] = testItem(types.SourceAmazon, fmt.Sprintf("a%d", i), 1000, 4.0, 100, 3)
	}

	ranked := e.Rank(items, query)
	for i, item := range ranked {
		assert.Equal(t, fmt.Sprintf("a%d", i), item.ID)
	}
}

func TestEngine_Rank_TieBreaksByRatingThenReviews(t *testing.T) {
	e := NewEngine(Weights{BudgetFit: 1, FeatureMatch: 0, DeliverySpeed: 0, Trust: 0}, nil)
	query := testQuery(1000, 2000)

	// all inside budget with the trust-free weights, so scores tie
	lowRated := testItem(types.SourceAmazon, "low", 1500, 3.0, 10, 3)
	highRated := testItem(types.SourceAmazon, "high", 1500, 4.9, 10, 3)
	moreReviews := testItem(types.SourceAmazon, "reviews", 1500, 4.9, 900, 3)

	ranked := e.Rank([]*types.Item{lowRated, highRated, moreReviews}, query)
	assert.Equal(t, "reviews", ranked[0].ID)
	assert.Equal(t, "high", ranked[1].ID)
	assert.Equal(t, "low", ranked[2].ID)
}

func TestEngine_Rank_Empty(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	assert.Empty(t, e.Rank(nil, testQuery(0, 0)))
	assert.Empty(t, e.Rank([]*types.Item{}, testQuery(0, 0)))
}

func TestEngine_AssignHighlights(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	query := testQuery(1000, 30000, "wireless")

	top := testItem(types.SourceAmazon, "top", 1500, 4.8, 2000, 2)
	top.Name = "Wireless Headphones"
	value := testItem(types.SourceFlipkart, "value", 1100, 4.5, 800, 4)
	fast := testItem(types.SourceMyntra, "fast", 25000, 3.9, 50, 1)

	ranked := e.Rank([]*types.Item{top, value, fast}, query)
	e.AssignHighlights(ranked)

	byID := make(map[string]*types.Item)
	for _, item := range ranked {
		byID[item.ID] = item
	}

	assert.Contains(t, ranked[0].Highlights, types.HighlightTopPick)
	assert.Contains(t, byID["value"].Highlights, types.HighlightBestValue)
	assert.Contains(t, byID["fast"].Highlights, types.HighlightFastestDelivery)
}

func TestEngine_AssignHighlights_Empty(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	assert.Empty(t, e.AssignHighlights(nil))
	assert.Empty(t, e.AssignHighlights([]*types.Item{}))
}

func TestEngine_AssignHighlights_SingleItemGetsAll(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)

	item := testItem(types.SourceAmazon, "solo", 1500, 4.5, 100, 2)
	item.MatchScore = 80

	e.AssignHighlights([]*types.Item{item})
	assert.Contains(t, item.Highlights, types.HighlightTopPick)
	assert.Contains(t, item.Highlights, types.HighlightBestValue)
	assert.Contains(t, item.Highlights, types.HighlightFastestDelivery)
}

func TestEngine_AssignHighlights_ClearsPreviousLabels(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)

	a := testItem(types.SourceAmazon, "a", 1500, 4.5, 100, 2)
	a.MatchScore = 90
	a.Highlights = []types.Highlight{types.HighlightBestValue}
	b := testItem(types.SourceFlipkart, "b", 500, 4.9, 100, 1)
	b.MatchScore = 70

	e.AssignHighlights([]*types.Item{a, b})
	assert.Equal(t, []types.Highlight{types.HighlightTopPick}, a.Highlights)
	assert.Contains(t, b.Highlights, types.HighlightBestValue)
}

func TestEngine_AssignHighlights_TiesResolveToRankOrder(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)

	first := testItem(types.SourceAmazon, "first", 1000, 4.0, 100, 2)
	first.MatchScore = 80
	second := testItem(types.SourceFlipkart, "second", 1000, 4.0, 100, 2)
	second.MatchScore = 80

	e.AssignHighlights([]*types.Item{first, second})
	assert.Contains(t, first.Highlights, types.HighlightTopPick)
	assert.NotContains(t, second.Highlights, types.HighlightTopPick)
	assert.Contains(t, first.Highlights, types.HighlightBestValue)
	assert.Contains(t, first.Highlights, types.HighlightFastestDelivery)
}

func TestEngine_Explain_MentionsBudgetAndFeatures(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	query := testQuery(1000, 2000, "wireless")

	item := testItem(types.SourceAmazon, "a1", 1500, 4.7, 1500, 2)
	item.Name = "Wireless Headphones"

	explanation := e.Explain(item, query)
	assert.True(t, strings.HasPrefix(explanation, "Recommended because "), explanation)
	assert.Contains(t, explanation, "budget")
}

func TestEngine_Explain_FallbackWithoutSignals(t *testing.T) {
	e := NewEngine(DefaultWeights(), nil)
	query := testQuery(0, 0)
	query.Text = "something obscure"

	item := testItem(types.SourceCroma, "c1", 500, 0, 0, 0)
	explanation := e.Explain(item, query)
	assert.Contains(t, explanation, "Closest available match")
	assert.Contains(t, explanation, "something obscure")
}

func TestBudgetFitScore(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		query *types.Query
		want  float64
	}{
		{"no budget is neutral", 5000, testQuery(0, 0), 0.5},
		{"inside band", 1500, testQuery(1000, 2000), 1},
		{"on upper bound", 2000, testQuery(1000, 2000), 1},
		{"double the max decays", 4000, testQuery(1000, 2000), 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := testItem(types.SourceAmazon, "x", tt.price, 4, 10, 3)
			assert.InDelta(t, tt.want, budgetFitScore(item, tt.query), 1e-9)
		})
	}
}

func TestTrustScore_VolumeMatters(t *testing.T) {
	fewReviews := testItem(types.SourceAmazon, "few", 1000, 4.8, 3, 3)
	manyReviews := testItem(types.SourceAmazon, "many", 1000, 4.6, 2000, 3)

	assert.Greater(t, trustScore(manyReviews), trustScore(fewReviews))
}

func TestBatchDeliveryScores(t *testing.T) {
	items := []*types.Item{
		testItem(types.SourceAmazon, "fast", 1000, 4, 10, 1),
		testItem(types.SourceFlipkart, "slow", 1000, 4, 10, 7),
		testItem(types.SourceCroma, "none", 1000, 4, 10, 0),
	}

	scores := batchDeliveryScores(items)
	assert.Equal(t, 1.0, scores[0])
	assert.Equal(t, 0.0, scores[1])
	assert.Equal(t, 0.0, scores[2])
}
