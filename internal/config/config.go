package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/mgolovanova35-netizen/wishlist-backend/pkg/config"
)

// Config holds all configuration for the wishlist backend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Telegram
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	NotifyEnabled    bool   `env:"NOTIFY_ENABLED" envDefault:"false"`

	// Record store (PostgREST-style HTTP API)
	StoreBaseURL string `env:"STORE_BASE_URL" envDefault:"http://localhost:3000"`
	StoreAPIKey  string `env:"STORE_API_KEY"`

	// Link parsing
	ParseUserAgent string        `env:"PARSE_USER_AGENT" envDefault:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"`
	CardAPIURL     string        `env:"CARD_API_URL" envDefault:"https://card.wb.ru/cards/v1/detail"`
	ParseTimeout   time.Duration `env:"PARSE_TIMEOUT" envDefault:"10s"`

	// Redis parse cache
	CacheEnabled  bool          `env:"CACHE_ENABLED" envDefault:"false"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wishlist config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// Session verification cannot work without the bot token. Development
	// mode tolerates its absence so the server can boot for local UI work.
	if cfg.Environment != "development" && cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN must be set in %q mode", cfg.Environment)
	}
	if cfg.NotifyEnabled && cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("NOTIFY_ENABLED requires TELEGRAM_BOT_TOKEN")
	}
	if cfg.StoreBaseURL == "" {
		return nil, fmt.Errorf("STORE_BASE_URL must not be empty")
	}

	return cfg, nil
}

// RedisAddr returns the Redis connection address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
