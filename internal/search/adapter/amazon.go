package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopscout/shopscout-backend/internal/search/types"
	"github.com/tidwall/gjson"
)

// AmazonAdapter fetches offers from the Amazon IN search gateway
type AmazonAdapter struct {
	*BaseAdapter
}

// NewAmazonAdapter creates a new Amazon adapter
func NewAmazonAdapter(config *types.SourceConfig) (SourceAdapter, error) {
	return &AmazonAdapter{BaseAdapter: NewBaseAdapter(config)}, nil
}

// Fetch executes a product search against the gateway
func (a *AmazonAdapter) Fetch(ctx context.Context, query *types.Query) ([]*types.Item, error) {
	params := url.Values{}
	params.Set("q", query.Text)
	params.Set("limit", strconv.Itoa(a.MaxResults()))
	if query.Pincode != "" {
		params.Set("pincode", query.Pincode)
	}

	apiURL := fmt.Sprintf("%s/search?%s", a.Config().BaseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range a.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}

	resp, err := a.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, a.fetchErr("REQUEST_FAILED", "failed to execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, a.fetchErr(fmt.Sprintf("HTTP_%d", resp.StatusCode), string(body), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// The gateway payload shape drifts between catalog versions, so
	// fields are extracted path by path instead of a strict decode.
	now := time.Now()
	var items []*types.Item
	gjson.GetBytes(body, "products").ForEach(func(_, p gjson.Result) bool {
		item := &types.Item{
			Source:      a.ID(),
			ID:          p.Get("asin").String(),
			Name:        p.Get("title").String(),
			Brand:       p.Get("brand").String(),
			Price:       decimal.NewFromFloat(p.Get("price.value").Float()),
			Currency:    firstNonEmpty(p.Get("price.currency").String(), "INR"),
			ImageURL:    p.Get("image").String(),
			Description: p.Get("description").String(),
			InStock:     p.Get("in_stock").Bool(),
			Rating:      p.Get("rating").Float(),
			ReviewCount: int(p.Get("reviews").Int()),
			URL:         p.Get("url").String(),
			FetchedAt:   now,
		}
		if mrp := p.Get("price.mrp"); mrp.Exists() && mrp.Float() > 0 {
			d := decimal.NewFromFloat(mrp.Float())
			item.OriginalPrice = &d
		}
		if specs := p.Get("specs"); specs.IsObject() {
			item.Specs = map[string]string{}
			specs.ForEach(func(k, v gjson.Result) bool {
				item.Specs[k.String()] = v.String()
				return true
			})
		}
		if eta := p.Get("delivery.eta_days"); eta.Exists() {
			item.Delivery = types.DeliveryEstimate{
				Available: true,
				ETADays:   int(eta.Int()),
				ETA:       p.Get("delivery.eta").String(),
				Cost:      decimal.NewFromFloat(p.Get("delivery.cost").Float()),
			}
		}
		if item.ID != "" && item.Name != "" {
			items = append(items, item)
		}
		return true
	})

	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
