package types

// SourceID identifies one retailer data source
type SourceID string

const (
	SourceAmazon   SourceID = "amazon"
	SourceFlipkart SourceID = "flipkart"
	SourceMyntra   SourceID = "myntra"
	SourceCroma    SourceID = "croma"
)

// SourceConfig holds per-source adapter settings
type SourceConfig struct {
	ID   SourceID `json:"id" mapstructure:"id"`
	Name string   `json:"name" mapstructure:"name"`

	// API settings
	BaseURL string `json:"base_url" mapstructure:"base_url"`
	APIKey  string `json:"api_key,omitempty" mapstructure:"api_key"`

	// Optional settings
	Timeout    int     `json:"timeout,omitempty" mapstructure:"timeout"`         // seconds, fetch deadline
	MaxRetries int     `json:"max_retries,omitempty" mapstructure:"max_retries"` // default: 3
	RateLimit  float64 `json:"rate_limit,omitempty" mapstructure:"rate_limit"`   // requests per second
	MaxResults int     `json:"max_results,omitempty" mapstructure:"max_results"` // default: 20
}

// Validate validates the source configuration
func (c *SourceConfig) Validate() error {
	if c.ID == "" {
		return ErrInvalidSourceID
	}
	if c.Name == "" {
		return ErrInvalidSourceName
	}
	if c.BaseURL == "" {
		return ErrInvalidBaseURL
	}
	return nil
}
