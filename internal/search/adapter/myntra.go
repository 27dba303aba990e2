package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopscout/shopscout-backend/internal/search/types"
)

// MyntraAdapter fetches fashion offers from the Myntra gateway
type MyntraAdapter struct {
	*BaseAdapter
}

// NewMyntraAdapter creates a new Myntra adapter
func NewMyntraAdapter(config *types.SourceConfig) (SourceAdapter, error) {
	return &MyntraAdapter{BaseAdapter: NewBaseAdapter(config)}, nil
}

// myntraResponse is the gateway search response
type myntraResponse struct {
	Results []struct {
		StyleID      int64    `json:"style_id"`
		Product      string   `json:"product"`
		Brand        string   `json:"brand"`
		Price        float64  `json:"price"`
		DiscountedAt float64  `json:"discounted_price,omitempty"`
		SearchImage  string   `json:"search_image"`
		Sizes        []string `json:"sizes,omitempty"`
		Color        string   `json:"color,omitempty"`
		InStock      bool     `json:"in_stock"`
		DeliveryDays int      `json:"delivery_days,omitempty"`
		Rating       float64  `json:"rating"`
		RatingCount  int      `json:"rating_count"`
		LandingURL   string   `json:"landing_url"`
	} `json:"results"`
}

// Fetch executes a product search against the gateway. Size and color
// filters are pushed down because Myntra prunes aggressively on them.
func (m *MyntraAdapter) Fetch(ctx context.Context, query *types.Query) ([]*types.Item, error) {
	params := url.Values{}
	params.Set("query", query.Text)
	params.Set("rows", strconv.Itoa(m.MaxResults()))
	if len(query.Filters.Sizes) > 0 {
		params.Set("sizes", strings.Join(query.Filters.Sizes, ","))
	}
	if len(query.Filters.Colors) > 0 {
		params.Set("colors", strings.Join(query.Filters.Colors, ","))
	}
	if query.Pincode != "" {
		params.Set("pincode", query.Pincode)
	}

	apiURL := fmt.Sprintf("%s/gateway/v2/search?%s", m.Config().BaseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range m.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}

	resp, err := m.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, m.fetchErr("REQUEST_FAILED", "failed to execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, m.fetchErr(fmt.Sprintf("HTTP_%d", resp.StatusCode), string(body), nil)
	}

	var myResp myntraResponse
	if err := json.NewDecoder(resp.Body).Decode(&myResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	now := time.Now()
	items := make([]*types.Item, 0, len(myResp.Results))
	for _, r := range myResp.Results {
		if r.StyleID == 0 || r.Product == "" {
			continue
		}

		price := r.Price
		var original *decimal.Decimal
		if r.DiscountedAt > 0 && r.DiscountedAt < r.Price {
			mrp := decimal.NewFromFloat(r.Price)
			original = &mrp
			price = r.DiscountedAt
		}

		specs := map[string]string{}
		if len(r.Sizes) > 0 {
			specs["sizes"] = strings.Join(r.Sizes, ",")
		}
		if r.Color != "" {
			specs["color"] = r.Color
		}

		item := &types.Item{
			Source:        m.ID(),
			ID:            strconv.FormatInt(r.StyleID, 10),
			Name:          r.Product,
			Brand:         r.Brand,
			Price:         decimal.NewFromFloat(price),
			OriginalPrice: original,
			Currency:      "INR",
			ImageURL:      r.SearchImage,
			Specs:         specs,
			InStock:       r.InStock,
			Rating:        r.Rating,
			ReviewCount:   r.RatingCount,
			URL:           r.LandingURL,
			FetchedAt:     now,
		}
		if r.DeliveryDays > 0 {
			item.Delivery = types.DeliveryEstimate{
				Available: true,
				ETADays:   r.DeliveryDays,
				ETA:       fmt.Sprintf("%d days", r.DeliveryDays),
				Cost:      decimal.Zero,
			}
		}
		items = append(items, item)
	}

	return items, nil
}
