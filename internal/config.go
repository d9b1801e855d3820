package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	LogLevel string
	Port     uint16
	BaseURL  string
	Cookie   CookieConfig
	Store    StoreConfig
	Events   EventsConfig
	Catalog  CatalogConfig
	Pricing  PricingConfig
	Limits   LimitsConfig

	// OrphanSweepInterval enables the background orphan sweep when positive.
	OrphanSweepInterval time.Duration
}

type CookieConfig struct {
	Domain string
	Secure bool
}

// StoreConfig selects the cart item backend.
type StoreConfig struct {
	Driver      string // "memory", "badger", "postgres" or "redis"
	BadgerPath  string
	DatabaseURL string
	RedisURL    string
}

// EventsConfig configures cart event publishing. An empty NATSURL disables it.
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

type CatalogConfig struct {
	SeedPath string // empty uses the embedded seed
}

type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

type LimitsConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	BodyLimit      string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 3000)
	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cookie_domain", "")
	v.SetDefault("store_driver", "memory")
	v.SetDefault("badger_path", "./data/badger")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject_prefix", "harvansh.cart")
	v.SetDefault("catalog_seed_path", "")
	v.SetDefault("free_shipping_threshold", "99.00")
	v.SetDefault("flat_shipping_fee", "9.99")
	v.SetDefault("rate_limit_rps", 10)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("body_limit", "1M")
	v.SetDefault("orphan_sweep_interval", "0s")
	return v
}

// NewConfig loads .env (searching up to two parent directories), an optional
// config.yaml, then environment variables, in increasing precedence.
func NewConfig() (*Config, error) {
	loadDotEnv()

	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return configFrom(v)
}

func loadDotEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}
	dir, _ := os.Getwd()
	for i := 0; i < 2; i++ {
		dir = filepath.Join(dir, "..")
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			return
		}
	}
	log.Warn().Msg(".env file not found, using environment variables and defaults")
}

func configFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:      strings.ToLower(v.GetString("env")),
		LogLevel: strings.ToLower(v.GetString("log_level")),
		Port:     v.GetUint16("port"),
		BaseURL:  v.GetString("base_url"),
		Cookie: CookieConfig{
			Domain: v.GetString("cookie_domain"),
			Secure: v.GetBool("cookie_secure"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(v.GetString("store_driver")),
			BadgerPath:  v.GetString("badger_path"),
			DatabaseURL: v.GetString("database_url"),
			RedisURL:    v.GetString("redis_url"),
		},
		Events: EventsConfig{
			NATSURL:       v.GetString("nats_url"),
			SubjectPrefix: v.GetString("nats_subject_prefix"),
		},
		Catalog: CatalogConfig{
			SeedPath: v.GetString("catalog_seed_path"),
		},
		Limits: LimitsConfig{
			RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
			RateLimitBurst: v.GetInt("rate_limit_burst"),
			BodyLimit:      v.GetString("body_limit"),
		},
		OrphanSweepInterval: v.GetDuration("orphan_sweep_interval"),
	}

	if cfg.Env != "dev" && cfg.Env != "prod" {
		log.Warn().Str("env", cfg.Env).Msg("Invalid environment. Using default: prod")
		cfg.Env = "prod"
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		log.Warn().Str("value", cfg.LogLevel).Msg("Invalid log level. Using default: info")
		cfg.LogLevel = "info"
	}

	if cfg.Port == 0 {
		return nil, fmt.Errorf("PORT must be a number between 1 and 65535")
	}

	switch cfg.Store.Driver {
	case "memory", "badger":
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL required when STORE_DRIVER is postgres")
		}
	case "redis":
		if cfg.Store.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL required when STORE_DRIVER is redis")
		}
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be one of memory, badger, postgres, redis; got %q", cfg.Store.Driver)
	}

	var err error
	if cfg.Pricing.FreeShippingThreshold, err = parseMoney(v, "free_shipping_threshold"); err != nil {
		return nil, err
	}
	if cfg.Pricing.FlatShippingFee, err = parseMoney(v, "flat_shipping_fee"); err != nil {
		return nil, err
	}

	if cfg.Limits.RateLimitRPS <= 0 || cfg.Limits.RateLimitBurst <= 0 {
		log.Warn().
			Float64("rps", cfg.Limits.RateLimitRPS).
			Int("burst", cfg.Limits.RateLimitBurst).
			Msg("Invalid rate limit. Using defaults: 10 rps, burst 20")
		cfg.Limits.RateLimitRPS = 10
		cfg.Limits.RateLimitBurst = 20
	}

	if cfg.OrphanSweepInterval < 0 {
		cfg.OrphanSweepInterval = 0
	}

	if cfg.Env == "prod" && !cfg.Cookie.Secure {
		log.Warn().Msg("COOKIE_SECURE is false in production; cart cookies will be sent over plain HTTP")
	}

	return cfg, nil
}

func parseMoney(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := v.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal amount, got %q", strings.ToUpper(key), raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", strings.ToUpper(key))
	}
	return d, nil
}
