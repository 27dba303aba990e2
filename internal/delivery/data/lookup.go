package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopscout/shopscout-backend/internal/delivery/biz"
	"github.com/tidwall/gjson"
)

// HTTPLookupClient resolves PIN codes against the India Post postal
// API. The payload nests the office list one level deep and status is
// reported as a string, so gjson keeps the parse tolerant.
type HTTPLookupClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPLookupClient creates a postal lookup client
func NewHTTPLookupClient(baseURL string, timeout time.Duration) *HTTPLookupClient {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HTTPLookupClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Lookup resolves a syntactically valid PIN code to its locality
func (c *HTTPLookupClient) Lookup(ctx context.Context, pincode string) (*biz.PincodeInfo, error) {
	apiURL := fmt.Sprintf("%s/pincode/%s", c.baseURL, pincode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pincode lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pincode lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup response: %w", err)
	}

	first := gjson.GetBytes(body, "0")
	if first.Get("Status").String() != "Success" {
		return &biz.PincodeInfo{Pincode: pincode, Known: false}, nil
	}

	office := first.Get("PostOffice.0")
	return &biz.PincodeInfo{
		Pincode:  pincode,
		Known:    true,
		City:     office.Get("District").String(),
		State:    office.Get("State").String(),
		Locality: office.Get("Name").String(),
	}, nil
}
