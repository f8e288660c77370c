package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	DataBackend   string
	DatabaseURL   string
	EnableDBCheck bool

	// Exchange rate service
	ExchangeRateBaseURL   string
	ExchangeRateAccessKey string
	ExchangeRateTimeout   time.Duration
	RateRefreshInterval   time.Duration
	RateCachePath         string
	HomeCurrency          string

	// HTTP surface
	JWTSecret          string
	RateLimit          string
	CORSAllowedOrigins []string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DATA_BACKEND", BackendMemory)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("EXCHANGE_RATE_BASE_URL", "http://api.exchangeratesapi.io/v1")
	viper.SetDefault("EXCHANGE_RATE_ACCESS_KEY", "")
	viper.SetDefault("EXCHANGE_RATE_TIMEOUT", "10s")
	viper.SetDefault("RATE_REFRESH_INTERVAL", "0s")
	viper.SetDefault("RATE_CACHE_PATH", "./data/rates.db")
	viper.SetDefault("HOME_CURRENCY", "INR")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "expenses")
	viper.SetDefault("AMQP_ROUTING_KEY", "expense.changed")

	viper.AutomaticEnv()

	timeout, err := time.ParseDuration(viper.GetString("EXCHANGE_RATE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXCHANGE_RATE_TIMEOUT: %w", err)
	}
	refreshInterval, err := time.ParseDuration(viper.GetString("RATE_REFRESH_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_REFRESH_INTERVAL: %w", err)
	}

	cfg := &Config{
		Port:                  viper.GetString("PORT"),
		IsProduction:          viper.GetBool("IS_PRODUCTION"),
		DataBackend:           strings.ToLower(viper.GetString("DATA_BACKEND")),
		DatabaseURL:           viper.GetString("PGSQL_URL"),
		EnableDBCheck:         viper.GetBool("ENABLE_DB_CHECK"),
		ExchangeRateBaseURL:   viper.GetString("EXCHANGE_RATE_BASE_URL"),
		ExchangeRateAccessKey: viper.GetString("EXCHANGE_RATE_ACCESS_KEY"),
		ExchangeRateTimeout:   timeout,
		RateRefreshInterval:   refreshInterval,
		RateCachePath:         viper.GetString("RATE_CACHE_PATH"),
		HomeCurrency:          strings.ToUpper(strings.TrimSpace(viper.GetString("HOME_CURRENCY"))),
		JWTSecret:             viper.GetString("JWT_SECRET"),
		RateLimit:             viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:    splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		AMQPURL:               viper.GetString("AMQP_URL"),
		AMQPExchange:          viper.GetString("AMQP_EXCHANGE"),
		AMQPRoutingKey:        viper.GetString("AMQP_ROUTING_KEY"),
	}

	if cfg.ExchangeRateAccessKey == "" {
		slog.Warn("EXCHANGE_RATE_ACCESS_KEY not set. Rate requests will likely be rejected by the service.")
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set. API authentication is disabled.")
	}

	return cfg, nil
}

// Validate checks the loaded values and reports every problem in one error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "PGSQL_URL is required when using postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendMemory, BackendPostgres))
	}

	if parsed, err := url.Parse(c.ExchangeRateBaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid exchange rate base URL '%s'", c.ExchangeRateBaseURL))
	}
	if c.ExchangeRateTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid exchange rate timeout %v: must be positive", c.ExchangeRateTimeout))
	}
	if c.RateRefreshInterval < 0 {
		problems = append(problems, fmt.Sprintf("invalid rate refresh interval %v: must not be negative", c.RateRefreshInterval))
	} else if c.RateRefreshInterval > 0 && c.RateRefreshInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid rate refresh interval %v: must be at least 1 minute", c.RateRefreshInterval))
	}
	if !currencyCodePattern.MatchString(c.HomeCurrency) {
		problems = append(problems, fmt.Sprintf("invalid home currency '%s': must be a 3-letter code", c.HomeCurrency))
	}

	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		problems = append(problems, fmt.Sprintf("invalid rate limit '%s': %v", c.RateLimit, err))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
