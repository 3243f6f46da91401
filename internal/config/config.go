package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyEnvironmentVariable = errors.New("empty environment variable")
	ErrInvalidEnvironmentValue  = errors.New("invalid environment variable")
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Storage     StorageConfig
	Database    DatabaseConfig
	Server      ServerConfig
	Admin       AdminConfig
	Ledger      LedgerConfig
	Telegram    TelegramConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	PriceFeed   PriceFeedConfig
	Services    ServicesConfig
}

// StorageConfig selects the repository implementation
type StorageConfig struct {
	Driver string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// AdminConfig identifies the single operator allowed to call admin endpoints
type AdminConfig struct {
	TelegramID string
}

// LedgerConfig holds the economic parameters that are not stored in the settings record
type LedgerConfig struct {
	Location          *time.Location
	MinWithdrawal     decimal.Decimal
	MembershipTimeout time.Duration
}

// TelegramConfig holds bot credentials and the channel users must join
type TelegramConfig struct {
	BotToken          string
	Channel           string
	RequireMembership bool
}

// KafkaConfig holds Kafka/event streaming configuration
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig holds per-client request limits for the public API
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// PriceFeedConfig holds the price oracle endpoint
type PriceFeedConfig struct {
	URL      string
	CacheTTL time.Duration
}

// ServicesConfig holds URIs of collaborating services
type ServicesConfig struct {
	WebAppURI string
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	// env.local is optional; a missing file is not an error
	if env != "production" {
		if err := godotenv.Load("env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{Environment: env}
	var err error

	// Server configuration
	serverPort, err := requireEnv("SERVER_PORT")
	if err != nil {
		return nil, err
	}
	if cfg.Server.Port, err = strconv.Atoi(serverPort); err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}

	if cfg.Admin.TelegramID, err = requireEnv("ADMIN_TELEGRAM_ID"); err != nil {
		return nil, err
	}

	// Storage configuration
	cfg.Storage.Driver = strings.ToLower(getEnvWithDefault("STORAGE_DRIVER", StorageDriverMemory))
	switch cfg.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
			return nil, err
		}
		if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
			return nil, err
		}
		if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
			return nil, err
		}
		if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
			return nil, err
		}
		cfg.Database.SSLMode = getEnvWithDefault("DB_SSLMODE", "disable")
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER %q: %w", cfg.Storage.Driver, ErrInvalidEnvironmentValue)
	}

	// Ledger configuration
	if cfg.Ledger.Location, err = time.LoadLocation(getEnvWithDefault("LEDGER_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("failed to parse LEDGER_TIMEZONE: %w", err)
	}
	if cfg.Ledger.MinWithdrawal, err = decimal.NewFromString(getEnvWithDefault("MIN_WITHDRAWAL_USD", "1.00")); err != nil {
		return nil, fmt.Errorf("failed to parse MIN_WITHDRAWAL_USD: %w", err)
	}
	if !cfg.Ledger.MinWithdrawal.IsPositive() {
		return nil, fmt.Errorf("MIN_WITHDRAWAL_USD must be positive: %w", ErrInvalidEnvironmentValue)
	}
	if cfg.Ledger.MembershipTimeout, err = time.ParseDuration(getEnvWithDefault("MEMBERSHIP_CHECK_TIMEOUT", "3s")); err != nil {
		return nil, fmt.Errorf("failed to parse MEMBERSHIP_CHECK_TIMEOUT: %w", err)
	}

	// Telegram configuration
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.Channel = os.Getenv("TELEGRAM_CHANNEL")
	defaultRequire := strconv.FormatBool(cfg.IsProduction())
	if cfg.Telegram.RequireMembership, err = strconv.ParseBool(getEnvWithDefault("TELEGRAM_REQUIRE_MEMBERSHIP", defaultRequire)); err != nil {
		return nil, fmt.Errorf("failed to parse TELEGRAM_REQUIRE_MEMBERSHIP: %w", err)
	}
	if cfg.Telegram.RequireMembership && (cfg.Telegram.BotToken == "" || cfg.Telegram.Channel == "") {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHANNEL are required when membership is enforced: %w", ErrEmptyEnvironmentVariable)
	}

	// Kafka configuration
	cfg.Kafka.Brokers = os.Getenv("KAFKA_BROKERS")
	cfg.Kafka.Topic = getEnvWithDefault("KAFKA_TOPIC", "ledger-events")

	// Redis configuration
	if cfg.Redis.Enabled, err = strconv.ParseBool(getEnvWithDefault("REDIS_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_ENABLED: %w", err)
	}
	cfg.Redis.Host = getEnvWithDefault("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = strconv.Atoi(getEnvWithDefault("REDIS_PORT", "6379")); err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_PORT: %w", err)
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = strconv.Atoi(getEnvWithDefault("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_DB: %w", err)
	}

	// Rate limiting
	if cfg.RateLimit.RequestsPerSecond, err = strconv.ParseFloat(getEnvWithDefault("RATE_LIMIT_RPS", "20"), 64); err != nil {
		return nil, fmt.Errorf("failed to parse RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimit.Burst, err = strconv.Atoi(getEnvWithDefault("RATE_LIMIT_BURST", "40")); err != nil {
		return nil, fmt.Errorf("failed to parse RATE_LIMIT_BURST: %w", err)
	}

	// Price feed
	cfg.PriceFeed.URL = getEnvWithDefault("PRICE_FEED_URL",
		"https://api.coingecko.com/api/v3/simple/price?ids=the-open-network&vs_currencies=usd&include_24hr_change=true")
	if cfg.PriceFeed.CacheTTL, err = time.ParseDuration(getEnvWithDefault("PRICE_CACHE_TTL", "30s")); err != nil {
		return nil, fmt.Errorf("failed to parse PRICE_CACHE_TTL: %w", err)
	}

	cfg.Services.WebAppURI = getEnvWithDefault("WEBAPP_URI", "*")

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Name, sslMode)
}

// Address returns host:port for the Redis server
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BrokerList splits the comma separated KAFKA_BROKERS value
func (c *KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
