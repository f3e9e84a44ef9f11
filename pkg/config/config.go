// Package config loads the runtime configuration of the listings binaries
// from the environment, an optional .env file and a YAML price override file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Sternrassler/vaultre-client/pkg/cache"
	"github.com/Sternrassler/vaultre-client/pkg/client"
	"github.com/Sternrassler/vaultre-client/pkg/listing"
)

// Cache backends selectable through CACHE_BACKEND.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the complete runtime configuration.
type Config struct {
	Port string `validate:"required,numeric"`

	// CORSAllowedOrigins lists origins allowed to call the server.
	CORSAllowedOrigins []string `validate:"min=1"`

	VaultRE VaultREConfig
	Cache   CacheConfig
	Display DisplayConfig
	Log     LogConfig
}

// VaultREConfig holds upstream access settings.
type VaultREConfig struct {
	BaseURL     string        `validate:"required,url"`
	APIKey      string
	BearerToken string
	Timeout     time.Duration `validate:"gt=0"`
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	Backend   string        `validate:"oneof=file redis memory"`
	Dir       string        `validate:"required_if=Backend file"`
	TTL       time.Duration `validate:"gt=0"`
	Namespace string        `validate:"required,excludesall=/\\:"`

	RedisAddr     string `validate:"required_if=Backend redis"`
	RedisPassword string
	RedisDB       int    `validate:"gte=0"`
	RedisPrefix   string
}

// DisplayConfig controls derived listing fields.
type DisplayConfig struct {
	// Timezone is an IANA name or a fixed offset such as "+11:00". Empty
	// keeps the default display location.
	Timezone string

	// PriceOverridesFile is a YAML file replacing the default overrides.
	PriceOverridesFile string
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Pretty bool
}

var validate = validator.New()

// Load reads the configuration. When envPath is given that .env file must
// exist; otherwise a .env in the working directory is loaded if present.
// Variables already set in the environment take precedence over .env values.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 {
		if err := godotenv.Load(envPath...); err != nil {
			return nil, fmt.Errorf("load env file %v: %w", envPath, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		VaultRE: VaultREConfig{
			BaseURL:     getEnv("VAULTRE_BASE_URL", client.DefaultBaseURL),
			APIKey:      os.Getenv("VAULTRE_API_KEY"),
			BearerToken: os.Getenv("VAULTRE_BEARER_TOKEN"),
			Timeout:     getEnvAsDuration("VAULTRE_TIMEOUT", 30*time.Second, &errs),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(getEnv("CACHE_BACKEND", BackendFile)),
			Dir:           getEnv("CACHE_DIR", "cache"),
			TTL:           getEnvAsDuration("CACHE_TTL", cache.DefaultTTL, &errs),
			Namespace:     getEnv("CACHE_NAMESPACE", cache.DefaultNamespace),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnvAsInt("REDIS_DB", 0, &errs),
			RedisPrefix:   getEnv("REDIS_PREFIX", cache.DefaultRedisPrefix),
		},
		Display: DisplayConfig{
			Timezone:           os.Getenv("DISPLAY_TIMEZONE"),
			PriceOverridesFile: os.Getenv("PRICE_OVERRIDES_FILE"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Pretty: getEnvAsBool("LOG_PRETTY", false, &errs),
		},
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the display timezone.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := ParseLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("invalid configuration: DISPLAY_TIMEZONE: %w", err)
	}
	return nil
}

// ClientConfig returns the upstream client configuration.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:     c.VaultRE.BaseURL,
		APIKey:      c.VaultRE.APIKey,
		BearerToken: c.VaultRE.BearerToken,
		Timeout:     c.VaultRE.Timeout,
	}
}

// FetcherOptions returns the cached fetch options.
func (c *Config) FetcherOptions() cache.FetcherOptions {
	return cache.FetcherOptions{
		Namespace: c.Cache.Namespace,
		TTL:       c.Cache.TTL,
	}
}

// ListingDisplay builds the display settings, loading price overrides from
// the configured file when one is set.
func (c *Config) ListingDisplay() (listing.Display, error) {
	display := listing.DefaultDisplay()

	loc, err := ParseLocation(c.Display.Timezone)
	if err != nil {
		return listing.Display{}, err
	}
	display.Location = loc

	if c.Display.PriceOverridesFile != "" {
		overrides, err := LoadPriceOverrides(c.Display.PriceOverridesFile)
		if err != nil {
			return listing.Display{}, err
		}
		display.PriceOverrides = overrides
	}
	return display, nil
}

// ParseLocation resolves a display timezone. Empty yields
// listing.DefaultLocation; "+HH:MM" and "-HH:MM" yield fixed offsets;
// anything else is looked up as an IANA name.
func ParseLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return listing.DefaultLocation, nil
	}
	if name[0] == '+' || name[0] == '-' {
		t, err := time.Parse("-07:00", name)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q", name)
		}
		_, offset := t.Zone()
		return time.FixedZone("UTC"+name, offset), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty elements.
func getEnvAsList(key string, fallback []string) []string {
	value := os.Getenv(key)
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvAsInt(key string, fallback int, errs *[]error) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool, errs *[]error) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a boolean", key, value))
		return fallback
	}
	return b
}

// getEnvAsDuration accepts whole seconds ("3600") or a Go duration ("1h").
func getEnvAsDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is neither seconds nor a duration", key, value))
		return fallback
	}
	return d
}
