package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var validate = validator.New()

// ServiceConfig is the runtime configuration of one microservice, read from
// the environment (and an optional .env file).
type ServiceConfig struct {
	ServiceName      string        `mapstructure:"SERVICE_NAME" validate:"required"`
	Port             string        `mapstructure:"PORT" validate:"required,numeric"`
	StoreDriver      string        `mapstructure:"STORE_DRIVER" validate:"oneof=postgres memory"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int           `mapstructure:"REDIS_DB" validate:"gte=0"`
	CacheTTL         time.Duration `mapstructure:"CACHE_TTL" validate:"gte=0"`
	Auditor          string        `mapstructure:"AUDITOR" validate:"required"`
	AuditTokenSecret string        `mapstructure:"AUDIT_TOKEN_SECRET"`
	ContactInfoFile  string        `mapstructure:"CONTACT_INFO_FILE"`
	LogLevel         string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogEncoding      string        `mapstructure:"LOG_ENCODING" validate:"oneof=json console"`
}

// Defaults seeds the values a service runs with when the environment is silent.
type Defaults struct {
	ServiceName string
	Port        string
	StoreDriver string
	DatabaseURL string
}

// LoadServiceConfig reads the environment over the given defaults and
// validates the result. A missing .env file is not an error.
func LoadServiceConfig(defaults Defaults) (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_NAME", defaults.ServiceName)
	v.SetDefault("PORT", defaults.Port)
	storeDriver := defaults.StoreDriver
	if storeDriver == "" {
		storeDriver = "postgres"
	}
	v.SetDefault("STORE_DRIVER", storeDriver)
	v.SetDefault("DATABASE_URL", defaults.DatabaseURL)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("AUDITOR", strings.ToUpper(defaults.ServiceName)+"_MS")
	v.SetDefault("AUDIT_TOKEN_SECRET", "")
	v.SetDefault("CONTACT_INFO_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")

	var cfg ServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
