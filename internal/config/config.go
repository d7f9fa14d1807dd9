// Package config loads process settings from an optional config file, a
// local .env file and the environment, in increasing priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dharmasatrya/tripplanner/internal/pkg/logger"
)

type Config struct {
	Port      string
	Log       logger.Config
	Serp      SerpConfig
	Apify     ApifyConfig
	Provider  ProviderConfig
	LLM       LLMConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type SerpConfig struct {
	APIKey  string
	BaseURL string
}

type ApifyConfig struct {
	APIKey       string
	BaseURL      string
	BookingActor string
	MaxItems     int
}

type ProviderConfig struct {
	HotelProvider string // booking or google
	Timeout       time.Duration
	MaxRetries    int
	RetryDelays   []time.Duration
	MaxConcurrent int
	Currency      string
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type CacheConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	TTL           time.Duration
}

type RateLimit struct {
	RPS   float64
	Burst int
}

type RateLimitConfig struct {
	Default RateLimit
	Serp    RateLimit
	Apify   RateLimit
	LLM     RateLimit
}

const (
	HotelProviderBooking = "booking"
	HotelProviderGoogle  = "google"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_OUTPUT", "console")
	v.SetDefault("LOG_FILE", "logs/tripplanner.log")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_AGE", 30)
	v.SetDefault("LOG_MAX_BACKUPS", 10)

	v.SetDefault("SERP_BASE_URL", "https://serpapi.com")
	v.SetDefault("APIFY_BASE_URL", "https://api.apify.com")
	v.SetDefault("APIFY_BOOKING_ACTOR", "voyager~fast-booking-scraper")
	v.SetDefault("APIFY_MAX_ITEMS", 5)

	v.SetDefault("HOTEL_PROVIDER", HotelProviderBooking)
	v.SetDefault("PROVIDER_TIMEOUT", "60s")
	v.SetDefault("PROVIDER_MAX_RETRIES", 2)
	v.SetDefault("PROVIDER_RETRY_DELAYS", "500ms,1s,2s")
	v.SetDefault("FANOUT_MAX_CONCURRENT", 2)
	v.SetDefault("CURRENCY", "INR")

	v.SetDefault("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("LLM_MODEL", "gemini-2.0-flash")
	v.SetDefault("LLM_TIMEOUT", "90s")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_TTL", "15m")

	v.SetDefault("RATE_LIMIT_DEFAULT_RPS", 5)
	v.SetDefault("RATE_LIMIT_DEFAULT_BURST", 5)
	v.SetDefault("RATE_LIMIT_SERPAPI_RPS", 2)
	v.SetDefault("RATE_LIMIT_SERPAPI_BURST", 4)
	v.SetDefault("RATE_LIMIT_APIFY_RPS", 1)
	v.SetDefault("RATE_LIMIT_APIFY_BURST", 2)
	v.SetDefault("RATE_LIMIT_LLM_RPS", 1)
	v.SetDefault("RATE_LIMIT_LLM_BURST", 3)
}

// Load reads configuration. path names an optional config file (yaml, json,
// toml or env); envFiles are dotenv files loaded into the environment without
// overriding variables that are already set. Missing dotenv files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	delays, err := parseDurations(v.GetString("PROVIDER_RETRY_DELAYS"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_RETRY_DELAYS: %w", err)
	}

	cfg := &Config{
		Port: v.GetString("PORT"),
		Log: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
			File: logger.FileConfig{
				Filename:   v.GetString("LOG_FILE"),
				MaxSize:    v.GetInt("LOG_MAX_SIZE"),
				MaxAge:     v.GetInt("LOG_MAX_AGE"),
				MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
				Compress:   true,
			},
		},
		Serp: SerpConfig{
			APIKey:  v.GetString("SERP_API_KEY"),
			BaseURL: v.GetString("SERP_BASE_URL"),
		},
		Apify: ApifyConfig{
			APIKey:       v.GetString("APIFY_API_KEY"),
			BaseURL:      v.GetString("APIFY_BASE_URL"),
			BookingActor: v.GetString("APIFY_BOOKING_ACTOR"),
			MaxItems:     v.GetInt("APIFY_MAX_ITEMS"),
		},
		Provider: ProviderConfig{
			HotelProvider: strings.ToLower(v.GetString("HOTEL_PROVIDER")),
			Timeout:       v.GetDuration("PROVIDER_TIMEOUT"),
			MaxRetries:    v.GetInt("PROVIDER_MAX_RETRIES"),
			RetryDelays:   delays,
			MaxConcurrent: v.GetInt("FANOUT_MAX_CONCURRENT"),
			Currency:      strings.ToUpper(v.GetString("CURRENCY")),
		},
		LLM: LLMConfig{
			APIKey:  v.GetString("GOOGLE_API_KEY"),
			BaseURL: v.GetString("LLM_BASE_URL"),
			Model:   v.GetString("LLM_MODEL"),
			Timeout: v.GetDuration("LLM_TIMEOUT"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			TTL:           v.GetDuration("REDIS_TTL"),
		},
		RateLimit: RateLimitConfig{
			Default: rateLimit(v, "DEFAULT"),
			Serp:    rateLimit(v, "SERPAPI"),
			Apify:   rateLimit(v, "APIFY"),
			LLM:     rateLimit(v, "LLM"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func rateLimit(v *viper.Viper, name string) RateLimit {
	return RateLimit{
		RPS:   v.GetFloat64("RATE_LIMIT_" + name + "_RPS"),
		Burst: v.GetInt("RATE_LIMIT_" + name + "_BURST"),
	}
}

func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	switch c.Provider.HotelProvider {
	case HotelProviderBooking, HotelProviderGoogle:
	default:
		return fmt.Errorf("invalid HOTEL_PROVIDER %q, must be %q or %q", c.Provider.HotelProvider, HotelProviderBooking, HotelProviderGoogle)
	}
	if c.Provider.MaxConcurrent < 1 {
		return fmt.Errorf("FANOUT_MAX_CONCURRENT must be at least 1, got %d", c.Provider.MaxConcurrent)
	}
	if c.Provider.MaxRetries < 0 {
		return fmt.Errorf("PROVIDER_MAX_RETRIES must not be negative, got %d", c.Provider.MaxRetries)
	}
	return nil
}

func parseDurations(s string) ([]time.Duration, error) {
	var out []time.Duration
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
