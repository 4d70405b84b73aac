// Package config loads service settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds every setting of the service.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogFile  string
	DataDir  string

	DBDriver    string
	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	FetchTimeout   time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	BaseURL    string
	CORSOrigin string

	StripeSecretKey     string
	StripeWebhookSecret string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
}

// LoadEnvFiles loads .env.development, falling back to .env. Missing files are ignored.
func LoadEnvFiles() bool {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			return false
		}
	}
	return true
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8082")
	v.SetDefault("GIN_MODE", gin.ReleaseMode)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("FETCH_TIMEOUT", "15s")
	v.SetDefault("RATE_LIMIT_RPS", 2)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("BASE_URL", "http://localhost:3000")
}

// Load reads the configuration from the environment. Call LoadEnvFiles
// first to pick up local .env files.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	cfg := &Config{
		Port:                v.GetString("PORT"),
		GinMode:             v.GetString("GIN_MODE"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFile:             v.GetString("LOG_FILE"),
		DataDir:             v.GetString("DATA_DIR"),
		DBDriver:            v.GetString("DB_DRIVER"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		TokenTTL:            v.GetDuration("TOKEN_TTL"),
		FetchTimeout:        v.GetDuration("FETCH_TIMEOUT"),
		RateLimitRPS:        v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:      v.GetInt("RATE_LIMIT_BURST"),
		BaseURL:             v.GetString("BASE_URL"),
		CORSOrigin:          v.GetString("CORS_ORIGIN"),
		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		GoogleClientID:      v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:   v.GetString("GOOGLE_REDIRECT_URI"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" && c.GinMode != gin.DebugMode {
		errs = append(errs, errors.New("JWT_SECRET is required outside debug mode"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
