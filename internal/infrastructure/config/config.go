package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration. Every tunable domain constant
// (score thresholds, portion tables' fallback, timeout budgets) lives here
// instead of in package-level state.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Search    SearchConfig    `mapstructure:"search"`
	Portion   PortionConfig   `mapstructure:"portion"`
	Hydration HydrationConfig `mapstructure:"hydration"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Estimator EstimatorConfig `mapstructure:"estimator"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	DedupWindow time.Duration `mapstructure:"dedup_window"`
	LogLevel    string        `mapstructure:"log_level"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// SearchConfig holds candidate search and re-ranking thresholds.
type SearchConfig struct {
	// PromotionDelta is the maximum confidence gap under which a generic
	// result is promoted over a top-ranked brand result.
	PromotionDelta float64 `mapstructure:"promotion_delta"`
	// PickerAbsoluteThreshold: top confidence below this always shows the
	// candidate picker.
	PickerAbsoluteThreshold float64 `mapstructure:"picker_absolute_threshold"`
	// PickerGapThreshold: a top-two confidence gap below this shows the
	// picker.
	PickerGapThreshold float64 `mapstructure:"picker_gap_threshold"`
	MaxResults         int     `mapstructure:"max_results"`
	// BrandLimit caps brand results interleaved after generics.
	BrandLimit int `mapstructure:"brand_limit"`
	// MaxPerClass caps candidates sharing one food class.
	MaxPerClass int `mapstructure:"max_per_class"`
}

// PortionConfig holds portion inference bounds.
type PortionConfig struct {
	// FallbackGrams is the last-resort portion size.
	FallbackGrams int `mapstructure:"fallback_grams"`
	// MaxPlausibleGrams bounds every accepted portion signal.
	MaxPlausibleGrams float64 `mapstructure:"max_plausible_grams"`
}

// HydrationConfig holds nutrition hydration settings.
type HydrationConfig struct {
	// Timeout bounds the canonical-lookup plus remote-estimation phase;
	// past it the pipeline synthesizes a local estimate.
	Timeout time.Duration `mapstructure:"timeout"`
}

// CatalogConfig holds the external catalog search collaborator settings.
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EstimatorConfig holds the name-based nutrition estimator settings.
type EstimatorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory | redis
	RedisAddr       string        `mapstructure:"redis_addr"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds request rate limiting settings.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig reads the .env file and environment into a validated Config.
func LoadConfig() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("catalog.base_url", "CATALOG_BASE_URL")
	viper.BindEnv("estimator.base_url", "ESTIMATOR_BASE_URL")
	viper.BindEnv("estimator.api_key", "ESTIMATOR_API_KEY")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey hides all but the first and last four characters of a key.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "food-resolver")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Re-ranking thresholds. Tunable data, not learned parameters.
	viper.SetDefault("search.promotion_delta", 0.15)
	viper.SetDefault("search.picker_absolute_threshold", 0.65)
	viper.SetDefault("search.picker_gap_threshold", 0.15)
	viper.SetDefault("search.max_results", 15)
	viper.SetDefault("search.brand_limit", 2)
	viper.SetDefault("search.max_per_class", 1)

	viper.SetDefault("portion.fallback_grams", 30)
	viper.SetDefault("portion.max_plausible_grams", 1000)

	viper.SetDefault("hydration.timeout", "6s")

	viper.SetDefault("catalog.base_url", "http://localhost:9200")
	viper.SetDefault("catalog.timeout", "3s")

	viper.SetDefault("estimator.base_url", "http://localhost:9300")
	viper.SetDefault("estimator.timeout", "7s")

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Search.PromotionDelta <= 0 || config.Search.PromotionDelta >= 1 {
		return fmt.Errorf("search.promotion_delta must be in (0, 1)")
	}
	if config.Search.PickerAbsoluteThreshold <= 0 || config.Search.PickerAbsoluteThreshold >= 1 {
		return fmt.Errorf("search.picker_absolute_threshold must be in (0, 1)")
	}
	if config.Search.PickerGapThreshold <= 0 || config.Search.PickerGapThreshold >= 1 {
		return fmt.Errorf("search.picker_gap_threshold must be in (0, 1)")
	}
	if config.Portion.FallbackGrams <= 0 {
		return fmt.Errorf("portion.fallback_grams must be positive")
	}
	if config.Portion.MaxPlausibleGrams <= 0 {
		return fmt.Errorf("portion.max_plausible_grams must be positive")
	}
	if config.Hydration.Timeout <= 0 {
		return fmt.Errorf("hydration.timeout must be positive")
	}
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory", "redis":
		default:
			return fmt.Errorf("cache.backend must be memory or redis, got %q", config.Cache.Backend)
		}
	}
	return nil
}
