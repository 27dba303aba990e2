package conf

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Search   SearchConfig   `mapstructure:"search"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Intent   IntentConfig   `mapstructure:"intent"`
	Pool     PoolConfig     `mapstructure:"pool"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

type SearchConfig struct {
	SourceTimeout time.Duration  `mapstructure:"source_timeout" validate:"min=0"`
	Sources       []SourceConfig `mapstructure:"sources" validate:"required,min=1,dive"`
}

type SourceConfig struct {
	ID         string  `mapstructure:"id" validate:"required"`
	Name       string  `mapstructure:"name" validate:"required"`
	BaseURL    string  `mapstructure:"base_url" validate:"required,url"`
	APIKey     string  `mapstructure:"api_key"`
	Timeout    int     `mapstructure:"timeout"`
	MaxRetries int     `mapstructure:"max_retries"`
	RateLimit  float64 `mapstructure:"rate_limit"`
	MaxResults int     `mapstructure:"max_results"`
}

type ScoringConfig struct {
	BudgetFit     float64       `mapstructure:"budget_fit" validate:"gte=0"`
	FeatureMatch  float64       `mapstructure:"feature_match" validate:"gte=0"`
	DeliverySpeed float64       `mapstructure:"delivery_speed" validate:"gte=0"`
	Trust         float64       `mapstructure:"trust" validate:"gte=0"`
	TuneInterval  time.Duration `mapstructure:"tune_interval"` // 0 disables the learning loop
}

type DeliveryConfig struct {
	LookupBaseURL string        `mapstructure:"lookup_base_url" validate:"required,url"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

type FeedbackConfig struct {
	Store string `mapstructure:"store" validate:"oneof=memory redis"`
}

type IntentConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type PoolConfig struct {
	Workers   int `mapstructure:"workers" validate:"min=0"`
	QueueSize int `mapstructure:"queue_size" validate:"min=0"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks structural constraints the service cannot start
// without
func (c *Config) Validate() error {
	if c.Feedback.Store == "" {
		c.Feedback.Store = "memory"
	}

	validate := validator.New()
	return validate.Struct(c)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
