package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Paystack PaystackConfig
	Exchange ExchangeConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ClientBaseURL is where checkout success/cancel pages live.
	ClientBaseURL string
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// StripeConfig holds card processor credentials. Mode selects how
// initiation responds: "checkout" returns a hosted checkout URL,
// "intent" returns a payment-intent client secret.
type StripeConfig struct {
	SecretKey string
	Mode      string
}

// PaystackConfig holds the mobile/bank processor credentials.
// Currency is the processor's settlement currency; charges in any
// other currency are converted before initiation.
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	Currency  string
}

type ExchangeConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// RedisConfig is optional; an empty Addr disables the exchange-rate cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getenv("PORT", "8088"),
			Env:           getenv("APP_ENV", "development"),
			ReadTimeout: 10 * time.Second,
			// Verify requests can hold the connection while a
			// processor answers; its client timeout is 30s.
			WriteTimeout: 45 * time.Second,
			ClientBaseURL: getenv("CLIENT_BASE_URL", "https://learnhub.app"),
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "learnhub:learnhub@tcp(localhost:3306)/learnhub?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "learnhub",
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			Mode:      getenv("STRIPE_MODE", "checkout"),
		},
		Paystack: PaystackConfig{
			SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
			BaseURL:   getenv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			Currency:  getenv("PAYSTACK_CURRENCY", "NGN"),
		},
		Exchange: ExchangeConfig{
			BaseURL:  getenv("EXCHANGE_BASE_URL", "https://open.er-api.com/v6/latest"),
			CacheTTL: time.Hour,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
