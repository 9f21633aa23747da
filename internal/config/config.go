package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig aggregates runtime configuration, injected through environment
// variables so deployments never hardcode endpoints or credentials.
type AppConfig struct {
	ServiceName string
	Env         string

	HTTPAddr string
	DBPath   string

	// External payment gateway.
	GatewayBaseURL   string
	GatewayShopID    string
	GatewaySecretKey string
	GatewayTimeout   time.Duration
	// Landing page the gateway redirects the customer back to.
	PaymentReturnURL string

	// Customer notification over SMTP. Empty address disables real delivery
	// and the notifier falls back to log-only mode.
	SMTPAddr string
	MailFrom string

	// Optional redis for /pay rate limiting. Empty disables the middleware.
	RedisAddr     string
	RedisDB       int
	PayRateLimit  int
	PayRateWindow time.Duration
}

// Load reads and validates configuration, using defaults where unset.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName:      getEnv("SERVICE_NAME", "storefront"),
		Env:              getEnv("ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DBPath:           getEnv("DB_PATH", "storefront.db"),
		GatewayBaseURL:   getEnv("GATEWAY_BASE_URL", "https://api.yookassa.ru/v3"),
		GatewayShopID:    getEnv("GATEWAY_SHOP_ID", ""),
		GatewaySecretKey: getEnv("GATEWAY_SECRET_KEY", ""),
		GatewayTimeout:   10 * time.Second,
		PaymentReturnURL: getEnv("PAYMENT_RETURN_URL", "http://127.0.0.1:8080/api/payment/succeed"),
		SMTPAddr:         getEnv("SMTP_ADDR", ""),
		MailFrom:         getEnv("MAIL_FROM", "orders@storefront.local"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisDB:          0,
		PayRateLimit:     30,
		PayRateWindow:    time.Minute,
	}

	timeoutSec, err := getEnvInt("GATEWAY_TIMEOUT_SEC", int(cfg.GatewayTimeout.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid GATEWAY_TIMEOUT_SEC: %w", err)
	}
	if timeoutSec <= 0 {
		return AppConfig{}, fmt.Errorf("GATEWAY_TIMEOUT_SEC must be > 0")
	}
	cfg.GatewayTimeout = time.Duration(timeoutSec) * time.Second

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("PAY_RATE_LIMIT", cfg.PayRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid PAY_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("PAY_RATE_LIMIT must be > 0")
	}
	cfg.PayRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("PAY_RATE_WINDOW_SEC", int(cfg.PayRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid PAY_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("PAY_RATE_WINDOW_SEC must be > 0")
	}
	cfg.PayRateWindow = time.Duration(rateWindowSec) * time.Second

	if cfg.GatewayBaseURL == "" {
		return AppConfig{}, fmt.Errorf("GATEWAY_BASE_URL must not be empty")
	}
	if !strings.HasPrefix(cfg.GatewayBaseURL, "http") {
		return AppConfig{}, fmt.Errorf("GATEWAY_BASE_URL must be an http(s) URL")
	}
	if cfg.PaymentReturnURL == "" {
		return AppConfig{}, fmt.Errorf("PAYMENT_RETURN_URL must not be empty")
	}
	if cfg.DBPath == "" {
		return AppConfig{}, fmt.Errorf("DB_PATH must not be empty")
	}

	return cfg, nil
}

// getEnv reads a string env var, falling back to a default when empty.
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt reads an integer env var, falling back to a default when empty.
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
