package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	PayPal   PayPalConfig   `mapstructure:"paypal"`
	Payout   PayoutConfig   `mapstructure:"payout"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig holds the settings for validating identity tokens issued by the
// auth collaborator.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// PayPalConfig is the external payment network configuration.
type PayPalConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	ClientID             string        `mapstructure:"client_id"`
	ClientSecret         string        `mapstructure:"client_secret"`
	WebhookID            string        `mapstructure:"webhook_id"`
	PartnerID            string        `mapstructure:"partner_id"`
	PartnerAttributionID string        `mapstructure:"partner_attribution_id"`
	ReturnURL            string        `mapstructure:"return_url"`
	CancelURL            string        `mapstructure:"cancel_url"`
	Timeout              time.Duration `mapstructure:"timeout"`
}

// PayoutConfig holds payout business rules.
type PayoutConfig struct {
	MinimumAmount int64  `mapstructure:"minimum_amount"` // smallest currency unit
	Currency      string `mapstructure:"currency"`
}

// WorkerConfig drives the pending-payment reconciliation job.
type WorkerConfig struct {
	ReconcileSchedule string        `mapstructure:"reconcile_schedule"` // cron spec
	StaleAfter        time.Duration `mapstructure:"stale_after"`
	BatchSize         int           `mapstructure:"batch_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: TP_ (TicketPay).
// Nested keys use underscore: TP_DATABASE_HOST, TP_PAYPAL_CLIENT_ID, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "ticketpay")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "ticketpay-auth")
	v.SetDefault("paypal.base_url", "https://api-m.sandbox.paypal.com")
	v.SetDefault("paypal.client_id", "")
	v.SetDefault("paypal.client_secret", "")
	v.SetDefault("paypal.webhook_id", "")
	v.SetDefault("paypal.partner_id", "")
	v.SetDefault("paypal.partner_attribution_id", "")
	v.SetDefault("paypal.return_url", "http://localhost:3000/connect/return")
	v.SetDefault("paypal.cancel_url", "http://localhost:3000/connect/cancel")
	v.SetDefault("paypal.timeout", "15s")
	v.SetDefault("payout.minimum_amount", 1000) // $10.00
	v.SetDefault("payout.currency", "USD")
	v.SetDefault("worker.reconcile_schedule", "*/10 * * * *")
	v.SetDefault("worker.stale_after", "30m")
	v.SetDefault("worker.batch_size", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: TP_DATABASE_HOST -> database.host
	v.SetEnvPrefix("TP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
