package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopscout/shopscout-backend/internal/search/types"
)

const amazonPayload = `{
	"products": [
		{
			"asin": "B0TEST1",
			"title": "Wireless Headphones",
			"brand": "boAt",
			"price": {"value": 1499.0, "mrp": 2990.0, "currency": "INR"},
			"image": "https://img.example.com/1.jpg",
			"description": "Bluetooth over-ear headphones",
			"in_stock": true,
			"rating": 4.3,
			"reviews": 1245,
			"url": "https://amazon.in/dp/B0TEST1",
			"specs": {"battery": "40h", "color": "black"},
			"delivery": {"eta_days": 2, "eta": "2-3 days", "cost": 0}
		},
		{
			"asin": "",
			"title": "Broken entry without id"
		},
		{
			"asin": "B0TEST2",
			"title": "Budget Earbuds",
			"price": {"value": 699.0},
			"in_stock": false
		}
	]
}`

func amazonTestAdapter(t *testing.T, baseURL string) SourceAdapter {
	t.Helper()
	a, err := NewAmazonAdapter(&types.SourceConfig{
		ID:         types.SourceAmazon,
		Name:       "Amazon India",
		BaseURL:    baseURL,
		MaxRetries: 1,
	})
	require.NoError(t, err)
	return a
}

func TestAmazonAdapter_Fetch(t *testing.T) {
	var gotPath, gotQuery, gotPincode, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotPincode = r.URL.Query().Get("pincode")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(amazonPayload))
	}))
	defer server.Close()

	a := amazonTestAdapter(t, server.URL)
	items, err := a.Fetch(context.Background(), &types.Query{
		ID:      "q1",
		Text:    "wireless headphones",
		Pincode: "110001",
	})
	require.NoError(t, err)

	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "wireless headphones", gotQuery)
	assert.Equal(t, "110001", gotPincode)
	assert.Equal(t, "ShopScout-Backend/1.0", gotUA)

	// the entry without an id is dropped
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, types.SourceAmazon, first.Source)
	assert.Equal(t, "B0TEST1", first.ID)
	assert.Equal(t, "Wireless Headphones", first.Name)
	assert.Equal(t, "boAt", first.Brand)
	assert.Equal(t, "1499", first.Price.String())
	require.NotNil(t, first.OriginalPrice)
	assert.Equal(t, "2990", first.OriginalPrice.String())
	assert.Equal(t, "INR", first.Currency)
	assert.True(t, first.InStock)
	assert.Equal(t, 4.3, first.Rating)
	assert.Equal(t, 1245, first.ReviewCount)
	assert.Equal(t, "black", first.Specs["color"])
	assert.True(t, first.Delivery.Available)
	assert.Equal(t, 2, first.Delivery.ETADays)

	second := items[1]
	assert.Equal(t, "B0TEST2", second.ID)
	// missing currency defaults
	assert.Equal(t, "INR", second.Currency)
	assert.Nil(t, second.OriginalPrice)
	assert.False(t, second.Delivery.Available)
}

func TestAmazonAdapter_FetchNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	a := amazonTestAdapter(t, server.URL)
	_, err := a.Fetch(context.Background(), &types.Query{ID: "q1", Text: "tv"})
	require.Error(t, err)

	var srcErr *types.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, types.SourceAmazon, srcErr.Source)
	assert.Equal(t, "HTTP_429", srcErr.Code)
}

func TestAmazonAdapter_FetchEmptyCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"products": []}`))
	}))
	defer server.Close()

	a := amazonTestAdapter(t, server.URL)
	items, err := a.Fetch(context.Background(), &types.Query{ID: "q1", Text: "tv"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAmazonAdapter_SendsAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"products": []}`))
	}))
	defer server.Close()

	a, err := NewAmazonAdapter(&types.SourceConfig{
		ID:         types.SourceAmazon,
		Name:       "Amazon India",
		BaseURL:    server.URL,
		APIKey:     "secret-key",
		MaxRetries: 1,
	})
	require.NoError(t, err)

	_, err = a.Fetch(context.Background(), &types.Query{ID: "q1", Text: "tv"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}
