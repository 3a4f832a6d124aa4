// Package config loads the service configuration from environment variables
// via viper. All variables share the BIRTHDAY_ prefix, for example
// BIRTHDAY_PORT or BIRTHDAY_DATABASE_HOST.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	Port int  `mapstructure:"port"`
	Log  Log  `mapstructure:"log"`
	DB   DB   `mapstructure:"database"`
	Auth Auth `mapstructure:"auth"`
	AI   AI   `mapstructure:"assistant"`
}

// Log configures the slog handler.
type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// DB holds the MySQL connection parameters.
type DB struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Name     string `mapstructure:"name"`
}

// DSN renders the go-sql-driver connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", d.User, d.Password, d.Host, d.Name)
}

// Auth configures the inbound session token verifier.
type Auth struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// AI configures the assistant orchestrator.
type AI struct {
	// Model is the fixed completion model identifier, e.g.
	// "googleai/gemini-2.5-flash".
	Model string `mapstructure:"model"`

	// Timezone names the zone used to render "today's date" into the system
	// prompt. Empty means UTC.
	Timezone string `mapstructure:"timezone"`

	// RatePerMinute and Burst bound chat requests per user.
	RatePerMinute int `mapstructure:"rate_per_minute"`
	Burst         int `mapstructure:"burst"`
}

// Location resolves the configured time zone, defaulting to UTC.
func (a AI) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("birthday")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.host", "localhost:3306")
	v.SetDefault("database.name", "birthdays")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("assistant.model", "googleai/gemini-2.5-flash")
	v.SetDefault("assistant.timezone", "")
	v.SetDefault("assistant.rate_per_minute", 20)
	v.SetDefault("assistant.burst", 5)

	// AutomaticEnv alone does not surface env-only keys through Unmarshal,
	// so touch every known key explicitly.
	for _, key := range v.AllKeys() {
		if val := v.Get(key); val != nil {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("BIRTHDAY_AUTH_SECRET is required")
	}
	return &cfg, nil
}
