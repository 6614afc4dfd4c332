package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Shopify     ShopifyConfig
	Auth        AuthConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Reconcile   ReconcileConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MigrationsPath string
	AutoMigrate    bool // AUTO_MIGRATE: apply pending migrations when the server starts
}

// DSN returns the lib/pq keyword/value connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as golang-migrate expects it
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type ShopifyConfig struct {
	ShopDomain    string
	AccessToken   string
	APIVersion    string
	WebhookSecret string // SHOPIFY_WEBHOOK_SECRET: verify incoming Shopify webhooks (X-Shopify-Hmac-Sha256)
}

type AuthConfig struct {
	JWTSecret   string
	AdminUserID string // ADMIN_USER_ID: account that can never be deleted
}

// RedisConfig is optional; an empty Addr disables the vendor metadata cache
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	VendorCacheTTL time.Duration
}

// KafkaConfig is optional; no brokers means timeline events are not published
type KafkaConfig struct {
	Brokers       []string
	TimelineTopic string
}

type ReconcileConfig struct {
	// ResurrectDeleted clears deleted_date on soft-deleted line items that receive an addition.
	ResurrectDeleted bool
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("VENDOR_CACHE_TTL", "1h")
	viper.SetDefault("KAFKA_TIMELINE_TOPIC", "order-timeline")

	viper.AutomaticEnv()

	cacheTTL, err := time.ParseDuration(getEnvOrViper("VENDOR_CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid VENDOR_CACHE_TTL: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	autoMigrate, err := parseBool(getEnvOrViper("AUTO_MIGRATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_MIGRATE: %w", err)
	}
	resurrect, err := parseBool(getEnvOrViper("RECONCILE_RESURRECT_DELETED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_RESURRECT_DELETED: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database:    loadDatabase(),
		Shopify: loadShopify(),
		Auth: AuthConfig{
			JWTSecret:   strings.TrimSpace(getEnvOrViper("JWT_SECRET", "")),
			AdminUserID: strings.TrimSpace(getEnvOrViper("ADMIN_USER_ID", "")),
		},
		Redis: RedisConfig{
			Addr:           strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
			Password:       getEnvOrViper("REDIS_PASSWORD", ""),
			DB:             redisDB,
			VendorCacheTTL: cacheTTL,
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnvOrViper("KAFKA_BROKERS", "")),
			TimelineTopic: getEnvOrViper("KAFKA_TIMELINE_TOPIC", "order-timeline"),
		},
		Reconcile: ReconcileConfig{
			ResurrectDeleted: resurrect,
		},
	}
	cfg.Database.AutoMigrate = autoMigrate

	// Validate required fields
	if err := cfg.Shopify.validate(); err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// LoadShopify loads only the Shopify settings, for tools that never serve HTTP.
func LoadShopify() (ShopifyConfig, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	viper.AutomaticEnv()
	cfg := loadShopify()
	return cfg, cfg.validate()
}

func loadShopify() ShopifyConfig {
	return ShopifyConfig{
		ShopDomain:    strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
		AccessToken:   strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
		APIVersion:    getEnvOrViper("SHOPIFY_API_VERSION", "2025-01"),
		WebhookSecret: strings.TrimSpace(getEnvOrViper("SHOPIFY_WEBHOOK_SECRET", "")),
	}
}

func (c ShopifyConfig) validate() error {
	if c.ShopDomain == "" {
		return fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	return nil
}

// LoadDatabase loads only the database settings, for tools that never talk to Shopify.
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	viper.AutomaticEnv()
	return loadDatabase()
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:           getEnvOrViper("DB_HOST", "localhost"),
		Port:           getEnvOrViper("DB_PORT", "5432"),
		User:           getEnvOrViper("DB_USER", "postgres"),
		Password:       getEnvOrViper("DB_PASSWORD", "postgres"),
		DBName:         getEnvOrViper("DB_NAME", "menahub"),
		SSLMode:        getEnvOrViper("DB_SSLMODE", "disable"),
		MigrationsPath: getEnvOrViper("MIGRATIONS_PATH", "migrations"),
	}
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(raw string) (bool, error) {
	if strings.TrimSpace(raw) == "" {
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}
