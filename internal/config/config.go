package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files, flags and environment variables.
type Config struct {
	AppName                string        `mapstructure:"app_name"`
	Env                    string        `mapstructure:"app_env"`
	LogLevel               string        `mapstructure:"log_level"`
	SourcesFile            string        `mapstructure:"sources_file"`
	PublishersFile         string        `mapstructure:"publishers_file"`
	RefreshIntervalSeconds int64         `mapstructure:"refresh_interval"`
	RefreshInterval        time.Duration `mapstructure:"-"`

	StorageType             string        `mapstructure:"storage_type"`
	StoragePath             string        `mapstructure:"storage_path"`
	StorageRetentionSeconds int64         `mapstructure:"storage_retention_seconds"`
	StorageCleanupSeconds   int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageRetention        time.Duration `mapstructure:"-"`
	StorageCleanupInterval  time.Duration `mapstructure:"-"`

	CacheTTLSeconds  int64         `mapstructure:"cache_ttl_seconds"`
	GlobalDeadlineMs int64         `mapstructure:"global_deadline_ms"`
	FeedTimeoutMs    int64         `mapstructure:"feed_timeout_ms"`
	APITimeoutMs     int64         `mapstructure:"api_timeout_ms"`
	CacheTTL         time.Duration `mapstructure:"-"`
	GlobalDeadline   time.Duration `mapstructure:"-"`
	FeedTimeout      time.Duration `mapstructure:"-"`
	APITimeout       time.Duration `mapstructure:"-"`

	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBaseDelayMs  int64         `mapstructure:"retry_base_delay_ms"`
	RetryBaseDelay    time.Duration `mapstructure:"-"`
	MaxSources        int           `mapstructure:"max_sources"`
	MaxItemsPerSource int           `mapstructure:"max_items_per_source"`

	EnrichMaxItems  int           `mapstructure:"enrich_max_items"`
	EnrichTimeoutMs int64         `mapstructure:"enrich_timeout_ms"`
	EnrichBudgetMs  int64         `mapstructure:"enrich_budget_ms"`
	EnrichWorkers   int           `mapstructure:"enrich_workers"`
	EnrichTimeout   time.Duration `mapstructure:"-"`
	EnrichBudget    time.Duration `mapstructure:"-"`

	NewsAPIBaseURL  string `mapstructure:"newsapi_base_url"`
	NewsAPIKey      string `mapstructure:"newsapi_key"`
	NewsAPIQuery    string `mapstructure:"newsapi_query"`
	NewsAPIPageSize int    `mapstructure:"newsapi_page_size"`

	RateLimitCooldownSeconds int64         `mapstructure:"rate_limit_cooldown_seconds"`
	RateLimitCooldown        time.Duration `mapstructure:"-"`
	BreakerFailureThreshold  int           `mapstructure:"breaker_failure_threshold"`
	BreakerCooldownSeconds   int64         `mapstructure:"breaker_cooldown_seconds"`
	BreakerCooldown          time.Duration `mapstructure:"-"`

	VerifyTimeoutMs     int64         `mapstructure:"verify_timeout_ms"`
	VerifyTimeout       time.Duration `mapstructure:"-"`
	VerifyConcurrency   int           `mapstructure:"verify_concurrency"`
	VerifyRatePerSecond float64       `mapstructure:"verify_rate_per_second"`
}

// Load reads configuration from environment variables and config files.
// Flags that were explicitly set on fs take precedence over both.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-health-news")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("refresh_interval", 900) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("storage_path", "./data/state.db")
	v.SetDefault("storage_retention_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("cache_ttl_seconds", 900)
	v.SetDefault("global_deadline_ms", 10000)
	v.SetDefault("feed_timeout_ms", 4000)
	v.SetDefault("api_timeout_ms", 5000)
	v.SetDefault("max_retries", 2)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("max_sources", 10)
	v.SetDefault("max_items_per_source", 10)
	v.SetDefault("enrich_max_items", 5)
	v.SetDefault("enrich_timeout_ms", 2000)
	v.SetDefault("enrich_budget_ms", 3000)
	v.SetDefault("enrich_workers", 5)
	v.SetDefault("newsapi_base_url", "https://newsapi.org/v2")
	v.SetDefault("newsapi_key", "")
	v.SetDefault("newsapi_query", "health OR medical OR wellness")
	v.SetDefault("newsapi_page_size", 10)
	v.SetDefault("rate_limit_cooldown_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("breaker_failure_threshold", 3)
	v.SetDefault("breaker_cooldown_seconds", 600)
	v.SetDefault("verify_timeout_ms", 8000)
	v.SetDefault("verify_concurrency", 3)
	v.SetDefault("verify_rate_per_second", 3.0)

	v.AutomaticEnv()
	// NEWS_API_KEY is the name the key is usually exported under.
	_ = v.BindEnv("newsapi_key", "NEWSAPI_KEY", "NEWS_API_KEY")

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.derive(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// derive validates the raw numeric settings and fills the Duration fields.
func (cfg *Config) derive() error {
	seconds := []struct {
		name string
		val  int64
		dst  *time.Duration
	}{
		{"refresh_interval", cfg.RefreshIntervalSeconds, &cfg.RefreshInterval},
		{"storage_retention_seconds", cfg.StorageRetentionSeconds, &cfg.StorageRetention},
		{"storage_cleanup_interval_seconds", cfg.StorageCleanupSeconds, &cfg.StorageCleanupInterval},
		{"cache_ttl_seconds", cfg.CacheTTLSeconds, &cfg.CacheTTL},
		{"rate_limit_cooldown_seconds", cfg.RateLimitCooldownSeconds, &cfg.RateLimitCooldown},
		{"breaker_cooldown_seconds", cfg.BreakerCooldownSeconds, &cfg.BreakerCooldown},
	}
	for _, s := range seconds {
		if s.val <= 0 {
			return fmt.Errorf("invalid %s (must be positive seconds)", s.name)
		}
		*s.dst = time.Duration(s.val) * time.Second
	}

	millis := []struct {
		name string
		val  int64
		dst  *time.Duration
	}{
		{"global_deadline_ms", cfg.GlobalDeadlineMs, &cfg.GlobalDeadline},
		{"feed_timeout_ms", cfg.FeedTimeoutMs, &cfg.FeedTimeout},
		{"api_timeout_ms", cfg.APITimeoutMs, &cfg.APITimeout},
		{"retry_base_delay_ms", cfg.RetryBaseDelayMs, &cfg.RetryBaseDelay},
		{"enrich_timeout_ms", cfg.EnrichTimeoutMs, &cfg.EnrichTimeout},
		{"enrich_budget_ms", cfg.EnrichBudgetMs, &cfg.EnrichBudget},
		{"verify_timeout_ms", cfg.VerifyTimeoutMs, &cfg.VerifyTimeout},
	}
	for _, m := range millis {
		if m.val <= 0 {
			return fmt.Errorf("invalid %s (must be positive milliseconds)", m.name)
		}
		*m.dst = time.Duration(m.val) * time.Millisecond
	}

	if cfg.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries (must not be negative)")
	}
	if cfg.MaxSources <= 0 || cfg.MaxItemsPerSource <= 0 {
		return fmt.Errorf("invalid max_sources/max_items_per_source (must be positive)")
	}
	if cfg.EnrichWorkers <= 0 {
		cfg.EnrichWorkers = 1
	}
	if cfg.VerifyConcurrency <= 0 {
		cfg.VerifyConcurrency = 1
	}
	return nil
}
