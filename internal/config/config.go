// Package config loads service configuration from an optional file plus the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        int           `mapstructure:"SERVER_PORT"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	DBEnabled         bool          `mapstructure:"DB_ENABLED"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            int           `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSLMODE"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	PromotionCacheTTL time.Duration `mapstructure:"PROMOTION_CACHE_TTL"`
	KafkaBrokers      string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic        string        `mapstructure:"KAFKA_TOPIC"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	TokenIssuer       string        `mapstructure:"TOKEN_ISSUER"`
	PermissionsFile   string        `mapstructure:"PERMISSIONS_FILE"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogFormat         string        `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"SERVER_PORT":         8080,
	"SHUTDOWN_TIMEOUT":    "15s",
	"DB_ENABLED":          true,
	"DB_HOST":             "localhost",
	"DB_PORT":             5432,
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "",
	"DB_NAME":             "commerce",
	"DB_SSLMODE":          "disable",
	"DB_AUTO_MIGRATE":     true,
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"PROMOTION_CACHE_TTL": "5m",
	"KAFKA_BROKERS":       "",
	"KAFKA_TOPIC":         "commerce.events",
	"JWT_SECRET":          "",
	"TOKEN_ISSUER":        "commerce-service",
	"PERMISSIONS_FILE":    "config/permissions.yaml",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
}

// Load reads path when it is non-empty, then overlays the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d is out of range", c.ServerPort))
	}
	if c.DBEnabled && (c.DBPort <= 0 || c.DBPort > 65535) {
		errs = append(errs, fmt.Errorf("DB_PORT %d is out of range", c.DBPort))
	}
	if c.DBEnabled && c.DBHost == "" {
		errs = append(errs, errors.New("DB_HOST is required when DB_ENABLED"))
	}
	return errors.Join(errs...)
}

// Brokers splits KAFKA_BROKERS on commas. Empty means Kafka is disabled.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
