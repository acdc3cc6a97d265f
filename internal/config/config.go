// Package config builds the typed application config from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env  string `mapstructure:"APP_ENV"`
	Port string `mapstructure:"PORT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	// AutoMigrate runs embedded migrations when the API boots.
	AutoMigrate bool `mapstructure:"DB_AUTO_MIGRATE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	OutboxBatch   int           `mapstructure:"OUTBOX_BATCH_SIZE"`
	OutboxTick    time.Duration `mapstructure:"OUTBOX_TICK"`
	MailPerSecond float64       `mapstructure:"MAIL_RATE_PER_SECOND"`
	MailBurst     int           `mapstructure:"MAIL_BURST"`

	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	JWTAccessTTL time.Duration `mapstructure:"JWT_ACCESS_TTL"`
	BcryptCost   int           `mapstructure:"BCRYPT_COST"`

	SessionTTL         time.Duration `mapstructure:"SESSION_TTL"`
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	MaxSessionsPerUser int           `mapstructure:"MAX_SESSIONS_PER_USER"`

	RateLimitAPI    int           `mapstructure:"RATE_LIMIT_API"`
	RateLimitAuth   int           `mapstructure:"RATE_LIMIT_AUTH"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	// LeaveAllocations is "ANNUAL=21,SICK=10,..."; see leave.ParseAllocations.
	LeaveAllocations  string  `mapstructure:"LEAVE_ALLOCATIONS"`
	LeaveCarryOverMax float64 `mapstructure:"LEAVE_CARRY_OVER_MAX"`

	CacheTTLDashboard time.Duration `mapstructure:"CACHE_TTL_DASHBOARD"`
	CacheTTLApprovers time.Duration `mapstructure:"CACHE_TTL_APPROVERS"`
}

var defaults = map[string]any{
	"APP_ENV":               "development",
	"PORT":                  "8080",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "postgres",
	"DB_PASSWORD":           "postgres",
	"DB_NAME":               "leave",
	"DB_SSLMODE":            "disable",
	"DB_AUTO_MIGRATE":       false,
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"KAFKA_BROKERS":         "localhost:9092",
	"KAFKA_GROUP_ID":        "leave-notification-group",
	"OUTBOX_BATCH_SIZE":     50,
	"OUTBOX_TICK":           "5s",
	"MAIL_RATE_PER_SECOND":  5.0,
	"MAIL_BURST":            10,
	"JWT_SECRET":            "",
	"JWT_ACCESS_TTL":        "24h",
	"BCRYPT_COST":           12,
	"SESSION_TTL":           "24h",
	"SESSION_IDLE_TIMEOUT":  "2h",
	"MAX_SESSIONS_PER_USER": 5,
	"RATE_LIMIT_API":        100,
	"RATE_LIMIT_AUTH":       5,
	"RATE_LIMIT_WINDOW":     "15m",
	"LEAVE_ALLOCATIONS":     "",
	"LEAVE_CARRY_OVER_MAX":  0.0,
	"CACHE_TTL_DASHBOARD":   "60s",
	"CACHE_TTL_APPROVERS":   "1h",
}

// Load reads the environment (a .env file is loaded by the binaries through
// godotenv before this runs) and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set when APP_ENV=production")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.SessionTTL <= 0 || c.SessionIdleTimeout <= 0 {
		return errors.New("config: SESSION_TTL and SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.MaxSessionsPerUser < 1 {
		return errors.New("config: MAX_SESSIONS_PER_USER must be at least 1")
	}
	if c.RateLimitWindow <= 0 {
		return errors.New("config: RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DatabaseDSN is the key/value DSN used by gorm's postgres driver.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// DatabaseURL is the URL form golang-migrate expects.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func (c *Config) KafkaBrokerList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
