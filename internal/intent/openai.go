package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/shopscout/shopscout-backend/internal/search/types"
	"go.uber.org/zap"
)

// Config holds AI extractor settings
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

const extractPrompt = `Extract shopping intent from the user's request as JSON with fields:
budget_min (number or null), budget_max (number or null), brands (string array),
colors (string array), sizes (string array), features (string array of product keywords).
Respond with JSON only.`

// AIExtractor asks an OpenAI-compatible model for structured intent and
// falls back to the rule-based parser when the call fails or the reply
// is not parseable. Extraction must never block a search.
type AIExtractor struct {
	client   *openai.Client
	model    string
	fallback *RuleExtractor
	logger   *zap.Logger
}

// NewAIExtractor creates the AI-backed extractor
func NewAIExtractor(cfg *Config, logger *zap.Logger) *AIExtractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &AIExtractor{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		fallback: NewRuleExtractor(),
		logger:   logger,
	}
}

type aiIntent struct {
	BudgetMin *float64 `json:"budget_min"`
	BudgetMax *float64 `json:"budget_max"`
	Brands    []string `json:"brands"`
	Colors    []string `json:"colors"`
	Sizes     []string `json:"sizes"`
	Features  []string `json:"features"`
}

// Extract parses the text via the model, degrading to rules on failure
func (e *AIExtractor) Extract(ctx context.Context, text, pincode string) (*types.Query, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrEmptyQuery
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Warn("ai intent extraction failed, using rule extractor", zap.Error(err))
		return e.fallback.Extract(ctx, text, pincode)
	}

	if len(resp.Choices) == 0 {
		return e.fallback.Extract(ctx, text, pincode)
	}

	var parsed aiIntent
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		e.logger.Warn("ai intent reply not parseable, using rule extractor", zap.Error(err))
		return e.fallback.Extract(ctx, text, pincode)
	}

	q := &types.Query{
		ID:      uuid.New().String(),
		Text:    text,
		Pincode: pincode,
		Filters: types.QueryFilters{
			Brands: parsed.Brands,
			Colors: parsed.Colors,
			Sizes:  parsed.Sizes,
		},
		Features:   parsed.Features,
		Confidence: 0.9,
	}
	if parsed.BudgetMax != nil {
		budget, err := budgetFromFloats(parsed.BudgetMin, parsed.BudgetMax)
		if err == nil {
			q.Budget = budget
		}
	}

	return q, nil
}

func budgetFromFloats(min, max *float64) (*types.BudgetRange, error) {
	if max == nil || *max <= 0 {
		return nil, fmt.Errorf("budget max missing")
	}
	b := &types.BudgetRange{}
	if min != nil && *min > 0 {
		b.Min = decimal.NewFromFloat(*min)
	}
	b.Max = decimal.NewFromFloat(*max)
	return b, nil
}
