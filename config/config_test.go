package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/seo")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "8082" {
		t.Errorf("Expected port 8082, got %s", cfg.Port)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Errorf("Expected postgres driver, got %s", cfg.DBDriver)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("Expected 168h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("Expected 15s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.RateLimitRPS != 2 || cfg.RateLimitBurst != 5 {
		t.Errorf("Expected 2 rps burst 5, got %v burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.Addr() != ":8082" {
		t.Errorf("Expected :8082, got %s", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:seo.db")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_RPS", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "9000" || cfg.DBDriver != DriverSQLite {
		t.Errorf("Expected overrides to apply, got port %s driver %s", cfg.Port, cfg.DBDriver)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("Expected 3s, got %s", cfg.FetchTimeout)
	}
	if cfg.RateLimitRPS != 0.5 {
		t.Errorf("Expected 0.5 rps, got %v", cfg.RateLimitRPS)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GinMode:        "release",
			DBDriver:       DriverPostgres,
			DatabaseURL:    "postgres://",
			JWTSecret:      "secret",
			TokenTTL:       time.Hour,
			FetchTimeout:   time.Second,
			RateLimitRPS:   1,
			RateLimitBurst: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"missing secret in release", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"missing secret in debug", func(c *Config) { c.JWTSecret = ""; c.GinMode = "debug" }, ""},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, "FETCH_TIMEOUT"},
		{"no burst", func(c *Config) { c.RateLimitBurst = 0 }, "RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
