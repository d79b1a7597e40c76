package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.CartTTL != 168*time.Hour {
		t.Fatalf("expected default cart ttl, got %v", cfg.CartTTL)
	}
	if cfg.KafkaTopic != "orders.completed" {
		t.Fatalf("unexpected kafka topic %q", cfg.KafkaTopic)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected no brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SHOP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ALLOW_SEED", "1")
	t.Setenv("APP_ENV", "development")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.Addr)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if !cfg.AllowSeed || !cfg.IsDevelopment() {
		t.Fatalf("expected seed + development flags, got %+v", cfg)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	if _, err := load(viper.New()); err != ErrMissingDatabaseURL {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("JWT_SECRET", "")
	if _, err := load(viper.New()); err != ErrMissingJWTSecret {
		t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
	}
}
