package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopscout/shopscout-backend/internal/search/types"
	"golang.org/x/time/rate"
)

// SourceAdapter is the pluggable fetch capability for one source. How
// an adapter obtains data (retailer API, scrape gateway) is its own
// concern; the orchestrator only needs Fetch.
type SourceAdapter interface {
	// Fetch returns the raw items one source has for a query
	Fetch(ctx context.Context, query *types.Query) ([]*types.Item, error)

	// ID returns the source ID
	ID() types.SourceID

	// Name returns the source display name
	Name() string

	// Validate validates the adapter configuration
	Validate() error
}

// BaseAdapter provides common functionality for all source adapters
type BaseAdapter struct {
	config     *types.SourceConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewBaseAdapter creates a new base adapter
func NewBaseAdapter(config *types.SourceConfig) *BaseAdapter {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &BaseAdapter{
		config:     config,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// ID returns the source ID
func (b *BaseAdapter) ID() types.SourceID {
	return b.config.ID
}

// Name returns the source display name
func (b *BaseAdapter) Name() string {
	return b.config.Name
}

// Config returns the adapter configuration
func (b *BaseAdapter) Config() *types.SourceConfig {
	return b.config
}

// MaxResults returns the configured result cap
func (b *BaseAdapter) MaxResults() int {
	if b.config.MaxResults > 0 {
		return b.config.MaxResults
	}
	return 20
}

// BuildDefaultHeaders builds default HTTP headers
func (b *BaseAdapter) BuildDefaultHeaders() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   "ShopScout-Backend/1.0",
	}
	if b.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + b.config.APIKey
	}
	return headers
}

// DoRequest executes an HTTP request with rate limiting and retries
func (b *BaseAdapter) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	maxRetries := b.config.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := b.httpClient.Do(req.WithContext(ctx))
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if i < maxRetries-1 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// Validate validates the adapter configuration
func (b *BaseAdapter) Validate() error {
	return b.config.Validate()
}

// fetchErr wraps an adapter failure as a SourceError
func (b *BaseAdapter) fetchErr(code, message string, err error) *types.SourceError {
	return &types.SourceError{
		Source:  b.config.ID,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
