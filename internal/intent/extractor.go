package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopscout/shopscout-backend/internal/search/types"
)

// Extractor turns free-text shopping intent into a structured query.
// The rule-based extractor below is the default; an AI-backed
// implementation can be swapped in behind the same interface.
type Extractor interface {
	Extract(ctx context.Context, text, pincode string) (*types.Query, error)
}

var (
	// "under 5000", "below ₹5,000", "less than 5000"
	reBudgetMax = regexp.MustCompile(`(?i)(?:under|below|less than|upto|up to|max(?:imum)?)\s*(?:rs\.?|₹|inr)?\s*([\d,]+)`)
	// "between 2000 and 5000", "2000 to 5000", "2000-5000"
	reBudgetRange = regexp.MustCompile(`(?i)(?:between\s*)?(?:rs\.?|₹|inr)?\s*([\d,]+)\s*(?:and|to|-)\s*(?:rs\.?|₹|inr)?\s*([\d,]+)`)
	// "around 3000", "about ₹3000"
	reBudgetAround = regexp.MustCompile(`(?i)(?:around|about|near|approx(?:imately)?)\s*(?:rs\.?|₹|inr)?\s*([\d,]+)`)

	reSize = regexp.MustCompile(`(?i)\bsize\s*([a-z0-9.]+)|\buk\s*(\d{1,2})\b|\b(xs|s|m|l|xl|xxl|xxxl)\b`)
)

// knownBrands is the recognition list for brand tokens. Matching is
// case-insensitive against whole words.
var knownBrands = []string{
	"nike", "adidas", "puma", "reebok", "asics", "new balance", "skechers",
	"samsung", "apple", "oneplus", "xiaomi", "realme", "boat", "sony", "jbl",
	"lg", "whirlpool", "bosch", "philips", "dyson",
	"levis", "allen solly", "h&m", "zara", "uniqlo",
}

var knownColors = []string{
	"black", "white", "red", "blue", "green", "yellow", "grey", "gray",
	"pink", "purple", "orange", "brown", "silver", "gold", "beige", "navy",
}

// stopwords are dropped before keyword extraction
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "i": {}, "me": {}, "my": {}, "for": {},
	"with": {}, "and": {}, "or": {}, "in": {}, "on": {}, "of": {}, "to": {},
	"want": {}, "need": {}, "looking": {}, "buy": {}, "get": {}, "find": {},
	"good": {}, "best": {}, "nice": {}, "some": {}, "please": {}, "under": {},
	"below": {}, "between": {}, "around": {}, "about": {}, "rs": {}, "inr": {},
}

// RuleExtractor is the deterministic fallback parser. It recognizes
// budget phrasing, known brand and color tokens, size markers, and
// keeps the remaining salient words as feature keywords.
type RuleExtractor struct{}

// NewRuleExtractor creates the rule-based extractor
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

// Extract parses the text into a structured query
func (e *RuleExtractor) Extract(_ context.Context, text, pincode string) (*types.Query, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, types.ErrEmptyQuery
	}

	q := &types.Query{
		ID:         uuid.New().String(),
		Text:       trimmed,
		Pincode:    pincode,
		Confidence: 0.5,
	}

	q.Budget = extractBudget(trimmed)
	if q.Budget != nil {
		q.Confidence += 0.2
	}

	lower := strings.ToLower(trimmed)
	for _, brand := range knownBrands {
		if containsWord(lower, brand) {
			q.Filters.Brands = append(q.Filters.Brands, brand)
		}
	}
	for _, color := range knownColors {
		if containsWord(lower, color) {
			q.Filters.Colors = append(q.Filters.Colors, color)
		}
	}
	if m := reSize.FindStringSubmatch(lower); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				q.Filters.Sizes = append(q.Filters.Sizes, g)
				break
			}
		}
	}
	if len(q.Filters.Brands) > 0 {
		q.Confidence += 0.15
	}

	q.Features = extractFeatures(lower)
	if len(q.Features) > 0 {
		q.Confidence += 0.1
	}
	if q.Confidence > 1 {
		q.Confidence = 1
	}

	return q, nil
}

func extractBudget(text string) *types.BudgetRange {
	if m := reBudgetRange.FindStringSubmatch(text); m != nil {
		min := parseAmount(m[1])
		max := parseAmount(m[2])
		if min.LessThanOrEqual(max) && max.IsPositive() {
			return &types.BudgetRange{Min: min, Max: max}
		}
	}
	if m := reBudgetMax.FindStringSubmatch(text); m != nil {
		max := parseAmount(m[1])
		if max.IsPositive() {
			return &types.BudgetRange{Min: decimal.Zero, Max: max}
		}
	}
	if m := reBudgetAround.FindStringSubmatch(text); m != nil {
		center := parseAmount(m[1])
		if center.IsPositive() {
			// 20% band on both sides of the anchor amount
			margin := center.Mul(decimal.NewFromFloat(0.2))
			return &types.BudgetRange{
				Min: center.Sub(margin),
				Max: center.Add(margin),
			}
		}
	}
	return nil
}

func parseAmount(s string) decimal.Decimal {
	cleaned := strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func extractFeatures(lower string) []string {
	// strip budget phrasing so amounts don't become keywords
	cleaned := reBudgetRange.ReplaceAllString(lower, " ")
	cleaned = reBudgetMax.ReplaceAllString(cleaned, " ")
	cleaned = reBudgetAround.ReplaceAllString(cleaned, " ")

	var features []string
	seen := map[string]struct{}{}
	for _, word := range strings.Fields(cleaned) {
		word = strings.Trim(word, ".,!?;:()\"'₹")
		if len(word) < 3 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		features = append(features, word)
	}
	return features
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	if idx < 0 {
		return false
	}
	if idx > 0 && isWordChar(text[idx-1]) {
		return false
	}
	end := idx + len(word)
	if end < len(text) && isWordChar(text[end]) {
		return false
	}
	return true
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
