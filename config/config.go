package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	Log       LogConfig
	Stripe    StripeConfig
	Telegram  TelegramConfig
	Donations DonationsConfig
}

type AppConfig struct {
	ServiceName string
}

type HTTPConfig struct {
	Host            string
	Port            string
	CORSAllowOrigin string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	APIBaseURL                string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

type TelegramConfig struct {
	BotToken    string
	ChatID      string
	APIBaseURL  string
	HTTPTimeout time.Duration
}

type DonationsConfig struct {
	ProductName  string
	ProcessedTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		return nil, errors.New("REDIS_ADDR environment variable is required")
	}
	stripeSecretKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY environment variable is required")
	}
	stripeWebhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if stripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "donations-service"),
		},
		HTTP: HTTPConfig{
			Host:            getEnv("HTTP_HOST", "0.0.0.0"),
			Port:            getEnv("HTTP_PORT", "8080"),
			CORSAllowOrigin: getEnv("HTTP_CORS_ALLOW_ORIGIN", ""),
		},
		Redis: RedisConfig{
			Addr:     redisAddr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Stripe: StripeConfig{
			SecretKey:                 stripeSecretKey,
			WebhookSecret:             stripeWebhookSecret,
			APIBaseURL:                getEnv("STRIPE_API_BASE_URL", "https://api.stripe.com"),
			SignatureToleranceSeconds: int64(getIntEnv("STRIPE_SIGNATURE_TOLERANCE_SECONDS", 300)),
			HTTPTimeout:               getSecondsEnv("STRIPE_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:      getEnv("TELEGRAM_CHAT_ID", ""),
			APIBaseURL:  getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
			HTTPTimeout: getSecondsEnv("TELEGRAM_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Donations: DonationsConfig{
			ProductName:  getEnv("DONATIONS_PRODUCT_NAME", "Donation"),
			ProcessedTTL: getDaysEnv("DONATIONS_PROCESSED_TTL_DAYS", 30*24*time.Hour),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getDaysEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if days, err := strconv.Atoi(value); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	return defaultValue
}
