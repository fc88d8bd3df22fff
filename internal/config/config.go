package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogLevel     string

	DBDSN          string
	DBMaxConns     int32
	MigrateOnStart bool

	JWTSecret         string
	JWTAccessTokenTTL time.Duration

	// Booking rules
	InstantBook       bool
	PendingHolds      bool
	PendingTTL        time.Duration
	ExpiryInterval    time.Duration
	ExpiryBatchSize   int
	LongStayNights    int
	ServiceFeePercent decimal.Decimal

	CatalogCacheTTL  time.Duration
	CatalogCacheSize int64

	// Optional infrastructure; empty disables the component.
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	PaymentDedupTTL       time.Duration
	AMQPURL               string
	PaymentQueue          string
	KafkaBrokers          string
	KafkaTopic            string
	PaymentWebhookKeyHash string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PROD_ORIGINS", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MIGRATE_ON_START", true)

	v.SetDefault("JWT_ACCESS_TOKEN_TTL", "15m")

	v.SetDefault("INSTANT_BOOK", false)
	v.SetDefault("PENDING_HOLDS", true)
	v.SetDefault("PENDING_TTL", "30m")
	v.SetDefault("EXPIRY_INTERVAL", "1m")
	v.SetDefault("EXPIRY_BATCH_SIZE", 100)
	v.SetDefault("LONG_STAY_NIGHTS", 30)
	v.SetDefault("SERVICE_FEE_PERCENT", "5")

	v.SetDefault("CATALOG_CACHE_TTL", "1m")
	v.SetDefault("CATALOG_CACHE_SIZE", 5000)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PAYMENT_DEDUP_TTL", "24h")
	v.SetDefault("PAYMENT_QUEUE", "payment-events")
	v.SetDefault("KAFKA_TOPIC", "reservation-status")
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return parse(v)
}

func parse(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		IsProduction:          v.GetString("APP_ENV") == PROD_STRING,
		ProdOrigins:           v.GetString("PROD_ORIGINS"),
		HTTPAddr:              v.GetString("HTTP_ADDR"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		DBDSN:                 v.GetString("DB_DSN"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		AMQPURL:               v.GetString("AMQP_URL"),
		PaymentQueue:          v.GetString("PAYMENT_QUEUE"),
		KafkaBrokers:          v.GetString("KAFKA_BROKERS"),
		KafkaTopic:            v.GetString("KAFKA_TOPIC"),
		PaymentWebhookKeyHash: v.GetString("PAYMENT_WEBHOOK_KEY_HASH"),
	}

	// Database DSN is required
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for verifying tokens
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	p := parser{v: v}
	cfg.DBMaxConns = int32(p.int("DB_MAX_CONNS"))
	cfg.MigrateOnStart = p.bool("MIGRATE_ON_START")
	cfg.JWTAccessTokenTTL = p.duration("JWT_ACCESS_TOKEN_TTL")
	cfg.InstantBook = p.bool("INSTANT_BOOK")
	cfg.PendingHolds = p.bool("PENDING_HOLDS")
	cfg.PendingTTL = p.duration("PENDING_TTL")
	cfg.ExpiryInterval = p.duration("EXPIRY_INTERVAL")
	cfg.ExpiryBatchSize = p.int("EXPIRY_BATCH_SIZE")
	cfg.LongStayNights = p.int("LONG_STAY_NIGHTS")
	cfg.ServiceFeePercent = p.decimal("SERVICE_FEE_PERCENT")
	cfg.CatalogCacheTTL = p.duration("CATALOG_CACHE_TTL")
	cfg.CatalogCacheSize = int64(p.int("CATALOG_CACHE_SIZE"))
	cfg.RedisDB = p.int("REDIS_DB")
	cfg.PaymentDedupTTL = p.duration("PAYMENT_DEDUP_TTL")
	if p.err != nil {
		return nil, p.err
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.LongStayNights < 1 {
		return nil, fmt.Errorf("invalid LONG_STAY_NIGHTS: must be at least 1")
	}
	if cfg.ServiceFeePercent.IsNegative() {
		return nil, fmt.Errorf("invalid SERVICE_FEE_PERCENT: must not be negative")
	}
	if cfg.ExpiryInterval <= 0 || cfg.PendingTTL <= 0 {
		return nil, fmt.Errorf("PENDING_TTL and EXPIRY_INTERVAL must be positive")
	}

	return cfg, nil
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func (p *parser) int(key string) int {
	n, err := cast.ToIntE(strings.TrimSpace(cast.ToString(p.v.Get(key))))
	if err != nil {
		p.fail(key, err)
	}
	return n
}

func (p *parser) bool(key string) bool {
	b, err := cast.ToBoolE(p.v.Get(key))
	if err != nil {
		p.fail(key, err)
	}
	return b
}

func (p *parser) duration(key string) time.Duration {
	d, err := time.ParseDuration(p.v.GetString(key))
	if err != nil {
		p.fail(key, err)
	}
	return d
}

func (p *parser) decimal(key string) decimal.Decimal {
	d, err := decimal.NewFromString(p.v.GetString(key))
	if err != nil {
		p.fail(key, err)
	}
	return d
}
