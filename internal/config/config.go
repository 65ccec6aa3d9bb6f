package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var loadEnvFunc = godotenv.Load

type Config struct {
	PriceAPIURL string
	Fiat        string
	RedisURL    string
	DatabaseURL string

	ListingTTLSecs int
	PriceTTLSecs   int
}

func Load() *Config {
	if err := loadEnvFunc(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := &Config{
		PriceAPIURL: strings.TrimSpace(os.Getenv("PRICE_API_URL")),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	cfg.Fiat = strings.ToLower(strings.TrimSpace(os.Getenv("PRICE_FIAT")))
	if cfg.Fiat == "" {
		cfg.Fiat = "usd"
	}

	if cfg.RedisURL == "" && cfg.DatabaseURL == "" {
		log.Println("Warning: neither REDIS_URL nor DATABASE_URL set, price deltas will not survive restarts")
	}

	cfg.ListingTTLSecs = 12 * 60 * 60
	if v := os.Getenv("LISTING_TTL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ListingTTLSecs = n
		} else {
			log.Printf("Warning: invalid LISTING_TTL_SECS=%q, using default", v)
		}
	}

	cfg.PriceTTLSecs = 60
	if v := os.Getenv("PRICE_TTL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PriceTTLSecs = n
		} else {
			log.Printf("Warning: invalid PRICE_TTL_SECS=%q, using default", v)
		}
	}

	return cfg
}
