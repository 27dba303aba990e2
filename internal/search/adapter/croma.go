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

// CromaAdapter fetches electronics offers from the Croma gateway
type CromaAdapter struct {
	*BaseAdapter
}

// NewCromaAdapter creates a new Croma adapter
func NewCromaAdapter(config *types.SourceConfig) (SourceAdapter, error) {
	return &CromaAdapter{BaseAdapter: NewBaseAdapter(config)}, nil
}

// Fetch executes a product search against the gateway
func (c *CromaAdapter) Fetch(ctx context.Context, query *types.Query) ([]*types.Item, error) {
	params := url.Values{}
	params.Set("searchTerm", query.Text)
	params.Set("pageSize", strconv.Itoa(c.MaxResults()))
	if query.Pincode != "" {
		params.Set("deliveryPincode", query.Pincode)
	}

	apiURL := fmt.Sprintf("%s/catalog/search?%s", c.Config().BaseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, c.fetchErr("REQUEST_FAILED", "failed to execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, c.fetchErr(fmt.Sprintf("HTTP_%d", resp.StatusCode), string(body), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	now := time.Now()
	var items []*types.Item
	gjson.GetBytes(body, "catalog.entries").ForEach(func(_, e gjson.Result) bool {
		item := &types.Item{
			Source:      c.ID(),
			ID:          e.Get("sku").String(),
			Name:        e.Get("name").String(),
			Brand:       e.Get("manufacturer").String(),
			Price:       decimal.NewFromFloat(e.Get("pricing.sellingPrice").Float()),
			Currency:    firstNonEmpty(e.Get("pricing.currency").String(), "INR"),
			ImageURL:    e.Get("media.primaryImage").String(),
			Description: e.Get("shortDescription").String(),
			InStock:     e.Get("availability.inStock").Bool(),
			Rating:      e.Get("ratings.average").Float(),
			ReviewCount: int(e.Get("ratings.count").Int()),
			URL:         e.Get("pdpUrl").String(),
			FetchedAt:   now,
		}
		if mrp := e.Get("pricing.mrp"); mrp.Exists() && mrp.Float() > 0 {
			d := decimal.NewFromFloat(mrp.Float())
			item.OriginalPrice = &d
		}
		if features := e.Get("keyFeatures"); features.IsObject() {
			item.Specs = map[string]string{}
			features.ForEach(func(k, v gjson.Result) bool {
				item.Specs[k.String()] = v.String()
				return true
			})
		}
		if promise := e.Get("delivery.promiseDays"); promise.Exists() {
			item.Delivery = types.DeliveryEstimate{
				Available: e.Get("delivery.serviceable").Bool(),
				ETADays:   int(promise.Int()),
				ETA:       e.Get("delivery.promiseLabel").String(),
				Cost:      decimal.NewFromFloat(e.Get("delivery.charge").Float()),
			}
		}
		if item.ID != "" && item.Name != "" {
			items = append(items, item)
		}
		return true
	})

	return items, nil
}
