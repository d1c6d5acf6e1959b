package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Logger   LoggerConfig   `koanf:"logger"`
	Auth     AuthConfig     `koanf:"auth"`
	Pricing  PricingConfig  `koanf:"pricing"`
	S3       S3Config       `koanf:"s3"`
	Redis    RedisConfig    `koanf:"redis"`
	Kafka    KafkaConfig    `koanf:"kafka"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigin      string        `koanf:"cors_origin"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Database        string `koanf:"name"`
	MaxConnections  int    `koanf:"max_connections"`
	MinConnections  int    `koanf:"min_connections"`
	MaxConnLifetime int    `koanf:"max_conn_lifetime"` // seconds
	AutoMigrate     bool   `koanf:"auto_migrate"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
	File   string `koanf:"file"`   // optional rotating log file
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
}

// PricingConfig locates the shipping and tax rate table.
type PricingConfig struct {
	RatesFile string `koanf:"rates_file"`
	// TaxRate overrides the table's tax rate when non-empty.
	TaxRate string `koanf:"tax_rate"`
}

// S3Config holds AWS S3 configuration for rate tables.
type S3Config struct {
	Enabled bool   `koanf:"enabled"`
	Bucket  string `koanf:"bucket"`
	Region  string `koanf:"region"`
	Prefix  string `koanf:"prefix"` // Path prefix within bucket (e.g., "pricing/")
}

// RedisConfig holds the idempotency store configuration.
type RedisConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Addr           string        `koanf:"addr"`
	Password       string        `koanf:"password"`
	IdempotencyTTL time.Duration `koanf:"idempotency_ttl"`
}

// KafkaConfig holds order event publishing configuration.
type KafkaConfig struct {
	Enabled bool     `koanf:"enabled"`
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

// envKeys maps environment variables onto configuration keys.
var envKeys = map[string]string{
	"SERVER_HOST":             "server.host",
	"SERVER_PORT":             "server.port",
	"SERVER_READ_TIMEOUT":     "server.read_timeout",
	"SERVER_WRITE_TIMEOUT":    "server.write_timeout",
	"SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
	"CORS_ORIGIN":             "server.cors_origin",
	"DB_HOST":                 "database.host",
	"DB_PORT":                 "database.port",
	"DB_USER":                 "database.user",
	"DB_PASSWORD":             "database.password",
	"DB_NAME":                 "database.name",
	"DB_MAX_CONNECTIONS":      "database.max_connections",
	"DB_MIN_CONNECTIONS":      "database.min_connections",
	"DB_MAX_CONN_LIFETIME":    "database.max_conn_lifetime",
	"DB_AUTO_MIGRATE":         "database.auto_migrate",
	"LOG_LEVEL":               "logger.level",
	"LOG_FORMAT":              "logger.format",
	"LOG_FILE":                "logger.file",
	"JWT_SECRET":              "auth.jwt_secret",
	"JWT_ISSUER":              "auth.issuer",
	"PRICING_RATES_FILE":      "pricing.rates_file",
	"PRICING_TAX_RATE":        "pricing.tax_rate",
	"S3_ENABLED":              "s3.enabled",
	"S3_BUCKET":               "s3.bucket",
	"S3_REGION":               "s3.region",
	"S3_PREFIX":               "s3.prefix",
	"REDIS_ENABLED":           "redis.enabled",
	"REDIS_ADDR":              "redis.addr",
	"REDIS_PASSWORD":          "redis.password",
	"REDIS_IDEMPOTENCY_TTL":   "redis.idempotency_ttl",
	"KAFKA_ENABLED":           "kafka.enabled",
	"KAFKA_BROKERS":           "kafka.brokers",
	"KAFKA_TOPIC":             "kafka.topic",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.host":                "0.0.0.0",
		"server.port":                8080,
		"server.read_timeout":        "15s",
		"server.write_timeout":       "15s",
		"server.shutdown_timeout":    "30s",
		"server.cors_origin":         "*",
		"database.host":              "localhost",
		"database.port":              5432,
		"database.user":              "postgres",
		"database.password":          "",
		"database.name":              "sleekshop",
		"database.max_connections":   25,
		"database.min_connections":   5,
		"database.max_conn_lifetime": 300,
		"database.auto_migrate":      false,
		"logger.level":               "info",
		"logger.format":              "json",
		"pricing.rates_file":         "",
		"s3.enabled":                 false,
		"s3.region":                  "us-east-1",
		"s3.prefix":                  "pricing/",
		"redis.enabled":              false,
		"redis.addr":                 "localhost:6379",
		"redis.idempotency_ttl":      "24h",
		"kafka.enabled":              false,
		"kafka.brokers":              []string{"localhost:9092"},
		"kafka.topic":                "order-events",
	}
}

// Load builds the configuration from built-in defaults, the optional YAML file
// named by CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envValue maps a known, non-empty environment variable onto its key. Unknown
// variables are dropped by returning an empty key.
func envValue(name, value string) (string, interface{}) {
	key, ok := envKeys[name]
	if !ok || value == "" {
		return "", nil
	}
	if key == "kafka.brokers" {
		return key, strings.Split(value, ",")
	}
	return key, value
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}
		if c.Redis.IdempotencyTTL <= 0 {
			return fmt.Errorf("redis idempotency TTL must be positive")
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when kafka is enabled")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
