package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopscout/shopscout-backend/internal/search/types"
)

func extract(t *testing.T, text string) *types.Query {
	t.Helper()
	q, err := NewRuleExtractor().Extract(context.Background(), text, "110001")
	require.NoError(t, err)
	return q
}

func TestRuleExtractor_EmptyText(t *testing.T) {
	e := NewRuleExtractor()
	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := e.Extract(context.Background(), text, "")
		assert.ErrorIs(t, err, types.ErrEmptyQuery)
	}
}

func TestRuleExtractor_Basics(t *testing.T) {
	q := extract(t, "wireless headphones")

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "wireless headphones", q.Text)
	assert.Equal(t, "110001", q.Pincode)
	assert.Nil(t, q.Budget)
	assert.Contains(t, q.Features, "wireless")
	assert.Contains(t, q.Features, "headphones")
}

func TestRuleExtractor_QueryIDsAreUnique(t *testing.T) {
	a := extract(t, "running shoes")
	b := extract(t, "running shoes")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRuleExtractor_BudgetPhrasings(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMin string
		wantMax string
	}{
		{"under", "headphones under 5000", "0", "5000"},
		{"below with symbol", "headphones below ₹5,000", "0", "5000"},
		{"less than", "shoes less than 3000", "0", "3000"},
		{"between", "phone between 10000 and 20000", "10000", "20000"},
		{"to range", "phone 10000 to 20000", "10000", "20000"},
		{"around gets a band", "phone around 20000", "16000", "24000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := extract(t, tt.text)
			require.NotNil(t, q.Budget)
			assert.Equal(t, tt.wantMin, q.Budget.Min.String())
			assert.Equal(t, tt.wantMax, q.Budget.Max.String())
		})
	}
}

func TestRuleExtractor_NoBudget(t *testing.T) {
	q := extract(t, "comfortable office chair")
	assert.Nil(t, q.Budget)
}

func TestRuleExtractor_Brands(t *testing.T) {
	q := extract(t, "nike running shoes")
	assert.Equal(t, []string{"nike"}, q.Filters.Brands)

	// brands only match as whole words
	q = extract(t, "pumapers notebook")
	assert.Empty(t, q.Filters.Brands)
}

func TestRuleExtractor_Colors(t *testing.T) {
	q := extract(t, "black leather wallet")
	assert.Equal(t, []string{"black"}, q.Filters.Colors)
}

func TestRuleExtractor_Sizes(t *testing.T) {
	q := extract(t, "blue shirt size m")
	assert.Equal(t, []string{"m"}, q.Filters.Sizes)
}

func TestRuleExtractor_BudgetAmountsAreNotFeatures(t *testing.T) {
	q := extract(t, "headphones under 5000")
	assert.NotContains(t, q.Features, "5000")
	assert.Contains(t, q.Features, "headphones")
}

func TestRuleExtractor_StopwordsDropped(t *testing.T) {
	q := extract(t, "i want to buy the best wireless headphones")
	assert.NotContains(t, q.Features, "want")
	assert.NotContains(t, q.Features, "best")
	assert.Contains(t, q.Features, "wireless")
}

func TestRuleExtractor_Confidence(t *testing.T) {
	// bare text sits at the base confidence plus the feature bump
	plain := extract(t, "qq zz")
	assert.InDelta(t, 0.5, plain.Confidence, 1e-9)

	rich := extract(t, "nike running shoes under 5000")
	assert.InDelta(t, 0.95, rich.Confidence, 1e-9)

	assert.LessOrEqual(t, rich.Confidence, 1.0)
}
