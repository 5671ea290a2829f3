package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/playerseats/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Seats      SeatsConfig      `mapstructure:"seats" validate:"required"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Webhook    Webhook          `mapstructure:"webhook"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required,oneof=local api"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
	// AllowedOrigins are the browser origins allowed to call the API, empty allows any
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimitPerSecond caps mutating seat requests per process, 0 disables the limiter
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	// AdminRole is the value of the role claim that grants admin access
	AdminRole string `mapstructure:"admin_role"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SeatsConfig holds the tunables of seat pricing
type SeatsConfig struct {
	// MaxSeatsCap is the ceiling used when a level allows unlimited seats
	MaxSeatsCap int `mapstructure:"max_seats_cap" validate:"required,min=1"`
	// PeriodLengthDays is the proration denominator
	PeriodLengthDays int    `mapstructure:"period_length_days" validate:"required,min=1"`
	AuditLogLimit    int    `mapstructure:"audit_log_limit" validate:"required,min=1"`
	Currency         string `mapstructure:"currency" validate:"required,len=3"`
	CurrencySymbol   string `mapstructure:"currency_symbol"`
	// Locale drives number formatting in customer facing messages
	Locale string `mapstructure:"locale"`
	// CalculatorType selects the proration calculator implementation
	CalculatorType string `mapstructure:"calculator_type"`
	// Policies are stored on startup for levels that have no policy yet
	Policies []LevelPolicyConfig `mapstructure:"policies" validate:"dive"`
}

// LevelPolicyConfig is the seat policy of one membership level
type LevelPolicyConfig struct {
	LevelID             int64    `mapstructure:"level_id" validate:"required,min=1"`
	DefaultSeats        int      `mapstructure:"default_seats" validate:"min=0"`
	AllowExtra          bool     `mapstructure:"allow_extra"`
	PricePerSeatMonthly string   `mapstructure:"price_per_seat_monthly"`
	BillingAmount       string   `mapstructure:"billing_amount"`
	MaxSeats            int      `mapstructure:"max_seats" validate:"min=0"`
	ProrationEnabled    bool     `mapstructure:"proration_enabled"`
	Features            []string `mapstructure:"features"`
}

type PaymentConfig struct {
	// Timeout bounds every gateway call made while adjusting seats
	Timeout             time.Duration `mapstructure:"timeout"`
	InvoiceDaysUntilDue int           `mapstructure:"invoice_days_until_due"`
	// InvoiceRetries is how often creating a payable document is retried before giving up
	InvoiceRetries       int           `mapstructure:"invoice_retries"`
	InvoiceRetryInterval time.Duration `mapstructure:"invoice_retry_interval"`
	// InvoiceURLTemplate links offline invoices, %s is replaced by the order code
	InvoiceURLTemplate string `mapstructure:"invoice_url_template"`
}

type StripeConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	SecretKey string `mapstructure:"secret_key"`
	// ExtraSeatPriceID is the recurring price billed once per extra seat on card subscriptions
	ExtraSeatPriceID string `mapstructure:"extra_seat_price_id"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional and only used for local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/playerseats")

	v.SetEnvPrefix("PLAYERSEATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		fmt.Printf("No config file found, using defaults and environment\n")
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.rate_limit_per_second", 10)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("auth.admin_role", "admin")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("seats.max_seats_cap", types.MaxSeatsCap)
	v.SetDefault("seats.period_length_days", types.DefaultPeriodLengthDays)
	v.SetDefault("seats.audit_log_limit", types.DefaultAuditLogLimit)
	v.SetDefault("seats.currency", "EUR")
	v.SetDefault("seats.currency_symbol", "€")
	v.SetDefault("seats.locale", "de")
	v.SetDefault("seats.calculator_type", "day")
	v.SetDefault("payment.timeout", 15*time.Second)
	v.SetDefault("payment.invoice_days_until_due", 30)
	v.SetDefault("payment.invoice_retries", 3)
	v.SetDefault("payment.invoice_retry_interval", 500*time.Millisecond)
	v.SetDefault("payment.invoice_url_template", "https://example.com/account/invoice/?code=%s")
	v.SetDefault("webhook.topic", "seat_events")
	v.SetDefault("webhook.pubsub", types.MemoryPubSub)
	v.SetDefault("webhook.max_retries", 3)
	v.SetDefault("webhook.initial_interval", time.Second)
	v.SetDefault("webhook.max_interval", 10*time.Second)
	v.SetDefault("webhook.multiplier", 2.0)
	v.SetDefault("webhook.max_elapsed_time", 2*time.Minute)
	v.SetDefault("webhook.delivery_concurrency", 4)
	v.SetDefault("cache.ttl", 30*time.Minute)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Auth:       AuthConfig{AdminRole: "admin"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Seats: SeatsConfig{
			MaxSeatsCap:      types.MaxSeatsCap,
			PeriodLengthDays: types.DefaultPeriodLengthDays,
			AuditLogLimit:    types.DefaultAuditLogLimit,
			Currency:         "EUR",
			CurrencySymbol:   "€",
			Locale:           "de",
			CalculatorType:   "day",
		},
		Payment: PaymentConfig{
			Timeout:              15 * time.Second,
			InvoiceDaysUntilDue:  30,
			InvoiceRetries:       3,
			InvoiceRetryInterval: 500 * time.Millisecond,
			InvoiceURLTemplate:   "https://example.com/account/invoice/?code=%s",
		},
		Webhook: Webhook{
			Topic:               "seat_events",
			PubSub:              types.MemoryPubSub,
			MaxRetries:          3,
			InitialInterval:     time.Second,
			MaxInterval:         10 * time.Second,
			Multiplier:          2.0,
			MaxElapsedTime:      2 * time.Minute,
			DeliveryConcurrency: 4,
		},
		Cache: CacheConfig{TTL: 30 * time.Minute},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
