package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is not set")
)

// Config holds environment-driven configuration.
type Config struct {
	Addr         string
	DatabaseURL  string
	JWTSecret    string
	Env          string
	RedisAddr    string
	CartTTL      time.Duration
	KafkaBrokers []string
	KafkaTopic   string
	AllowSeed    bool
}

// Load reads configuration from a local .env file (if present) and the
// process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	v.SetDefault("SHOP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("CART_TTL", "168h")
	v.SetDefault("KAFKA_TOPIC", "orders.completed")

	cfg := Config{
		Addr:        v.GetString("SHOP_ADDR"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		Env:         v.GetString("APP_ENV"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		CartTTL:     v.GetDuration("CART_TTL"),
		KafkaTopic:  v.GetString("KAFKA_TOPIC"),
		AllowSeed:   v.GetString("ALLOW_SEED") == "1",
	}
	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}
