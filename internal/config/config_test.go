package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PRICE_API_URL", "")
	t.Setenv("PRICE_FIAT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LISTING_TTL_SECS", "")
	t.Setenv("PRICE_TTL_SECS", "")

	cfg := Load()
	if cfg.Fiat != "usd" {
		t.Fatalf("expected default fiat usd, got %s", cfg.Fiat)
	}
	if cfg.ListingTTLSecs != 12*60*60 {
		t.Fatalf("expected 12h listing ttl, got %d", cfg.ListingTTLSecs)
	}
	if cfg.PriceTTLSecs != 60 {
		t.Fatalf("expected 60s price ttl, got %d", cfg.PriceTTLSecs)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("PRICE_API_URL", "http://localhost:8080")
	t.Setenv("PRICE_FIAT", "EUR")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("LISTING_TTL_SECS", "600")
	t.Setenv("PRICE_TTL_SECS", "30")

	cfg := Load()
	if cfg.PriceAPIURL != "http://localhost:8080" || cfg.RedisURL != "redis:6379" || cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Fiat != "eur" {
		t.Fatalf("fiat should be lowercased, got %s", cfg.Fiat)
	}
	if cfg.ListingTTLSecs != 600 || cfg.PriceTTLSecs != 30 {
		t.Fatalf("unexpected ttls: %+v", cfg)
	}

	t.Setenv("PRICE_TTL_SECS", "bad")
	cfg = Load()
	if cfg.PriceTTLSecs != 60 {
		t.Fatalf("invalid ttl should fall back to default, got %d", cfg.PriceTTLSecs)
	}
}
