package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Providers   ProvidersConfig   `yaml:"providers"`
	Sync        SyncConfig        `yaml:"sync"`
	Attribution AttributionConfig `yaml:"attribution"`
	Tracking    TrackingConfig    `yaml:"tracking"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds the optional Redis cache configuration.
// An empty Addr disables the cache entirely.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ProvidersConfig holds per-provider API endpoints and timeouts.
// Credentials are NOT configured here; they arrive per connected app
// through the credential intake endpoint.
type ProvidersConfig struct {
	RevenueCat RevenueCatConfig `yaml:"revenuecat"`
	AppsFlyer  ProviderEndpoint `yaml:"appsflyer"`
	Adjust     ProviderEndpoint `yaml:"adjust"`
	Mixpanel   ProviderEndpoint `yaml:"mixpanel"`
	Amplitude  ProviderEndpoint `yaml:"amplitude"`
	AppStore   ProviderEndpoint `yaml:"appstore"`
}

// ProviderEndpoint is the common shape for a third-party API endpoint
type ProviderEndpoint struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c ProviderEndpoint) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RevenueCatConfig holds RevenueCat API configuration, including the
// hard safety caps for the per-customer fan-out.
type RevenueCatConfig struct {
	BaseURL              string `yaml:"base_url"`
	TimeoutSeconds       int    `yaml:"timeout_seconds"`
	MaxCustomerPages     int    `yaml:"max_customer_pages"`
	CustomersPerPage     int    `yaml:"customers_per_page"`
	MaxCustomersDetailed int    `yaml:"max_customers_detailed"`
	DetailConcurrency    int    `yaml:"detail_concurrency"`
}

// Timeout returns the configured timeout as a duration
func (c RevenueCatConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SyncConfig holds sync orchestrator configuration
type SyncConfig struct {
	// CronSpec schedules the system-wide sync of all active connected apps.
	CronSpec string `yaml:"cron_spec"`
	Enabled  bool   `yaml:"enabled"`
}

// AttributionConfig holds click-to-install matching configuration
type AttributionConfig struct {
	MatchWindowMinutes int `yaml:"match_window_minutes"`
}

// MatchWindow returns the click match window as a duration
func (c AttributionConfig) MatchWindow() time.Duration {
	return time.Duration(c.MatchWindowMinutes) * time.Minute
}

// TrackingConfig holds click redirector configuration
type TrackingConfig struct {
	// FallbackSearchURL receives unknown slugs as a ?term= query instead
	// of serving an error page.
	FallbackSearchURL string `yaml:"fallback_search_url"`
	CacheTTLSeconds   int    `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the link cache TTL as a duration
func (c TrackingConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Providers.RevenueCat.BaseURL == "" {
		cfg.Providers.RevenueCat.BaseURL = "https://api.revenuecat.com/v2"
	}
	if cfg.Providers.RevenueCat.TimeoutSeconds == 0 {
		cfg.Providers.RevenueCat.TimeoutSeconds = 10
	}
	if cfg.Providers.RevenueCat.MaxCustomerPages == 0 {
		cfg.Providers.RevenueCat.MaxCustomerPages = 10
	}
	if cfg.Providers.RevenueCat.CustomersPerPage == 0 {
		cfg.Providers.RevenueCat.CustomersPerPage = 100
	}
	if cfg.Providers.RevenueCat.MaxCustomersDetailed == 0 {
		cfg.Providers.RevenueCat.MaxCustomersDetailed = 30
	}
	if cfg.Providers.RevenueCat.DetailConcurrency == 0 {
		cfg.Providers.RevenueCat.DetailConcurrency = 5
	}
	if cfg.Providers.AppsFlyer.BaseURL == "" {
		cfg.Providers.AppsFlyer.BaseURL = "https://hq1.appsflyer.com"
	}
	if cfg.Providers.Adjust.BaseURL == "" {
		cfg.Providers.Adjust.BaseURL = "https://automate.adjust.com"
	}
	if cfg.Providers.Mixpanel.BaseURL == "" {
		cfg.Providers.Mixpanel.BaseURL = "https://mixpanel.com"
	}
	if cfg.Providers.Amplitude.BaseURL == "" {
		cfg.Providers.Amplitude.BaseURL = "https://amplitude.com"
	}
	if cfg.Providers.AppStore.BaseURL == "" {
		cfg.Providers.AppStore.BaseURL = "https://api.appstoreconnect.apple.com"
	}
	for _, ep := range []*ProviderEndpoint{
		&cfg.Providers.AppsFlyer, &cfg.Providers.Adjust, &cfg.Providers.Mixpanel,
		&cfg.Providers.Amplitude, &cfg.Providers.AppStore,
	} {
		if ep.TimeoutSeconds == 0 {
			ep.TimeoutSeconds = 10
		}
	}
	if cfg.Sync.CronSpec == "" {
		cfg.Sync.CronSpec = "@hourly"
	}
	if cfg.Attribution.MatchWindowMinutes == 0 {
		cfg.Attribution.MatchWindowMinutes = 60
	}
	if cfg.Tracking.FallbackSearchURL == "" {
		cfg.Tracking.FallbackSearchURL = "https://apps.apple.com/search"
	}
	if cfg.Tracking.CacheTTLSeconds == 0 {
		cfg.Tracking.CacheTTLSeconds = 300
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if baseURL := os.Getenv("REVENUECAT_BASE_URL"); baseURL != "" {
		cfg.Providers.RevenueCat.BaseURL = baseURL
	}
	if baseURL := os.Getenv("APPSFLYER_BASE_URL"); baseURL != "" {
		cfg.Providers.AppsFlyer.BaseURL = baseURL
	}
	if baseURL := os.Getenv("ADJUST_BASE_URL"); baseURL != "" {
		cfg.Providers.Adjust.BaseURL = baseURL
	}
	if baseURL := os.Getenv("MIXPANEL_BASE_URL"); baseURL != "" {
		cfg.Providers.Mixpanel.BaseURL = baseURL
	}
	if baseURL := os.Getenv("AMPLITUDE_BASE_URL"); baseURL != "" {
		cfg.Providers.Amplitude.BaseURL = baseURL
	}
	if baseURL := os.Getenv("APPSTORE_BASE_URL"); baseURL != "" {
		cfg.Providers.AppStore.BaseURL = baseURL
	}
	if searchURL := os.Getenv("TRACKING_FALLBACK_SEARCH_URL"); searchURL != "" {
		cfg.Tracking.FallbackSearchURL = searchURL
	}

	return cfg, nil
}
