package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Logger         LoggerConfig
	Auth           AuthConfig
	Shipping       ShippingConfig
	Payment        PaymentConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	DiscountImport DiscountImportConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string
}

// ShippingConfig holds the carrier API settings.
type ShippingConfig struct {
	BaseURL        string
	Token          string
	ShopID         int
	ServiceID      int
	FromDistrictID int
	PrintURL       string // label printing host, token query is appended
	Timeout        time.Duration
	CacheTTL       time.Duration
}

// PaymentConfig holds the payment gateway settings.
type PaymentConfig struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
	RedirectURL string // client page base, order id is appended
	IPNURL      string // public API base, notification path is appended
	RequestType string
	Lang        string
	Timeout     time.Duration
}

// RedisConfig holds the address cache connection settings.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// KafkaConfig holds order event publishing settings.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// DiscountImportConfig holds settings for bulk discount code import at startup.
type DiscountImportConfig struct {
	Files     []string
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Prefix  string // Path prefix within bucket (e.g., "discount-codes/")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "fashionshop")
	v.SetDefault("DB_MAX_CONNECTIONS", 25)
	v.SetDefault("DB_MIN_CONNECTIONS", 5)
	v.SetDefault("DB_MAX_CONN_LIFETIME", 300)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("GHN_BASE_URL", "https://dev-online-gateway.ghn.vn/shiip/public-api")
	v.SetDefault("GHN_PRINT_URL", "https://dev-online-gateway.ghn.vn")
	v.SetDefault("GHN_TOKEN", "")
	v.SetDefault("GHN_SHOP_ID", 0)
	v.SetDefault("GHN_SERVICE_ID", 53320)
	v.SetDefault("GHN_FROM_DISTRICT_ID", 0)
	v.SetDefault("GHN_TIMEOUT", "10s")
	v.SetDefault("GHN_CACHE_TTL", "24h")

	v.SetDefault("MOMO_ENDPOINT", "https://test-payment.momo.vn/v2/gateway/api")
	v.SetDefault("MOMO_PARTNER_CODE", "MOMO")
	v.SetDefault("MOMO_ACCESS_KEY", "")
	v.SetDefault("MOMO_SECRET_KEY", "")
	v.SetDefault("CLIENT_PAGE_URL", "http://localhost:3000")
	v.SetDefault("API_URL", "http://localhost:8080")
	v.SetDefault("MOMO_REQUEST_TYPE", "payWithMethod")
	v.SetDefault("MOMO_LANG", "vi")
	v.SetDefault("MOMO_TIMEOUT", "15s")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "fashionshop")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "order-events")

	v.SetDefault("DISCOUNT_IMPORT_FILES", "")
	v.SetDefault("S3_ENABLED", false)
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PREFIX", "discount-codes/")
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Database:        v.GetString("DB_NAME"),
			MaxConnections:  v.GetInt("DB_MAX_CONNECTIONS"),
			MinConnections:  v.GetInt("DB_MIN_CONNECTIONS"),
			MaxConnLifetime: v.GetInt("DB_MAX_CONN_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		Shipping: ShippingConfig{
			BaseURL:        v.GetString("GHN_BASE_URL"),
			Token:          v.GetString("GHN_TOKEN"),
			ShopID:         v.GetInt("GHN_SHOP_ID"),
			ServiceID:      v.GetInt("GHN_SERVICE_ID"),
			FromDistrictID: v.GetInt("GHN_FROM_DISTRICT_ID"),
			PrintURL:       v.GetString("GHN_PRINT_URL"),
			Timeout:        v.GetDuration("GHN_TIMEOUT"),
			CacheTTL:       v.GetDuration("GHN_CACHE_TTL"),
		},
		Payment: PaymentConfig{
			Endpoint:    v.GetString("MOMO_ENDPOINT"),
			PartnerCode: v.GetString("MOMO_PARTNER_CODE"),
			AccessKey:   v.GetString("MOMO_ACCESS_KEY"),
			SecretKey:   v.GetString("MOMO_SECRET_KEY"),
			RedirectURL: v.GetString("CLIENT_PAGE_URL"),
			IPNURL:      v.GetString("API_URL"),
			RequestType: v.GetString("MOMO_REQUEST_TYPE"),
			Lang:        v.GetString("MOMO_LANG"),
			Timeout:     v.GetDuration("MOMO_TIMEOUT"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_PREFIX"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		DiscountImport: DiscountImportConfig{
			Files:     splitList(v.GetString("DISCOUNT_IMPORT_FILES")),
			S3Enabled: v.GetBool("S3_ENABLED"),
			S3Bucket:  v.GetString("S3_BUCKET"),
			S3Region:  v.GetString("S3_REGION"),
			S3Prefix:  v.GetString("S3_PREFIX"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
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

	if c.Shipping.BaseURL == "" {
		return fmt.Errorf("shipping base URL is required")
	}

	if c.Shipping.Timeout <= 0 {
		return fmt.Errorf("shipping timeout must be positive")
	}

	if c.Payment.Endpoint == "" {
		return fmt.Errorf("payment endpoint is required")
	}

	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("payment timeout must be positive")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when kafka is enabled")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.DiscountImport.S3Enabled {
		if c.DiscountImport.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.DiscountImport.S3Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
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

// splitList splits a comma separated env value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
