package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopscout/shopscout-backend/internal/search/types"
)

// FlipkartAdapter fetches offers from the Flipkart affiliate gateway
type FlipkartAdapter struct {
	*BaseAdapter
}

// NewFlipkartAdapter creates a new Flipkart adapter
func NewFlipkartAdapter(config *types.SourceConfig) (SourceAdapter, error) {
	return &FlipkartAdapter{BaseAdapter: NewBaseAdapter(config)}, nil
}

// flipkartRequest is the gateway search request
type flipkartRequest struct {
	Query      string   `json:"query"`
	Pincode    string   `json:"pincode,omitempty"`
	Brands     []string `json:"brands,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

// flipkartResponse is the gateway search response
type flipkartResponse struct {
	Products []struct {
		ItemID       string            `json:"item_id"`
		Title        string            `json:"title"`
		Brand        string            `json:"brand"`
		SellingPrice float64           `json:"selling_price"`
		MRP          float64           `json:"mrp,omitempty"`
		Currency     string            `json:"currency"`
		ImageURL     string            `json:"image_url"`
		Description  string            `json:"description"`
		Attributes   map[string]string `json:"attributes,omitempty"`
		InStock      bool              `json:"in_stock"`
		DeliveryDays int               `json:"delivery_days,omitempty"`
		DeliveryFee  float64           `json:"delivery_fee,omitempty"`
		Rating       float64           `json:"rating"`
		RatingCount  int               `json:"rating_count"`
		ProductURL   string            `json:"product_url"`
	} `json:"products"`
}

// Fetch executes a product search against the gateway
func (f *FlipkartAdapter) Fetch(ctx context.Context, query *types.Query) ([]*types.Item, error) {
	reqBody, err := json.Marshal(flipkartRequest{
		Query:      query.Text,
		Pincode:    query.Pincode,
		Brands:     query.Filters.Brands,
		MaxResults: f.MaxResults(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1/products/search", f.Config().BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range f.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}

	resp, err := f.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, f.fetchErr("REQUEST_FAILED", "failed to execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, f.fetchErr(fmt.Sprintf("HTTP_%d", resp.StatusCode), string(body), nil)
	}

	var fkResp flipkartResponse
	if err := json.NewDecoder(resp.Body).Decode(&fkResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	now := time.Now()
	items := make([]*types.Item, 0, len(fkResp.Products))
	for _, p := range fkResp.Products {
		if p.ItemID == "" || p.Title == "" {
			continue
		}
		item := &types.Item{
			Source:      f.ID(),
			ID:          p.ItemID,
			Name:        p.Title,
			Brand:       p.Brand,
			Price:       decimal.NewFromFloat(p.SellingPrice),
			Currency:    firstNonEmpty(p.Currency, "INR"),
			ImageURL:    p.ImageURL,
			Description: p.Description,
			Specs:       p.Attributes,
			InStock:     p.InStock,
			Rating:      p.Rating,
			ReviewCount: p.RatingCount,
			URL:         p.ProductURL,
			FetchedAt:   now,
		}
		if p.MRP > 0 {
			mrp := decimal.NewFromFloat(p.MRP)
			item.OriginalPrice = &mrp
		}
		if p.DeliveryDays > 0 {
			item.Delivery = types.DeliveryEstimate{
				Available: true,
				ETADays:   p.DeliveryDays,
				ETA:       fmt.Sprintf("%d days", p.DeliveryDays),
				Cost:      decimal.NewFromFloat(p.DeliveryFee),
			}
		}
		items = append(items, item)
	}

	return items, nil
}
