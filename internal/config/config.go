// Package config reads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/01moynul/wholesale-shop/internal/database"
)

const ServiceName = "wholesale-shop"

type Config struct {
	Port    string
	AppEnv  string
	BaseURL string

	DB database.Config

	AuthRequired bool
	JWTSecret    string
	JWTTTL       time.Duration

	CORSOrigin string
	StaticDir  string
	UploadDir  string

	LogLevel       string
	OtelEndpoint   string
	OtelAuthHeader string

	ShutdownTimeout time.Duration
}

// Development reports whether APP_ENV is development.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

// TracingEnabled reports whether an OTLP endpoint is configured.
func (c *Config) TracingEnabled() bool {
	return c.OtelEndpoint != ""
}

// Load builds a Config from the environment. All invalid values are
// reported together.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:    getEnv("PORT", "9000"),
		AppEnv:  strings.ToLower(getEnv("APP_ENV", "production")),
		BaseURL: strings.TrimRight(os.Getenv("BASE_URL"), "/"),
		DB: database.Config{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", database.DriverSQLite)),
			DSN:        os.Getenv("DB_DSN"),
			SQLitePath: getEnv("SQLITE_PATH", "./data/shop.db"),
		},
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
		StaticDir:      getEnv("STATIC_DIR", "./client/build"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		OtelEndpoint:   os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader: os.Getenv("OTEL_AUTH_HEADER"),
	}

	var err error
	if cfg.AuthRequired, err = getBool("AUTH_REQUIRED", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.JWTTTL, err = getDuration("JWT_TTL", time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 20*time.Second); err != nil {
		errs = append(errs, err)
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be a number, got %q", cfg.Port))
	}
	if cfg.AppEnv != "development" && cfg.AppEnv != "production" {
		errs = append(errs, fmt.Errorf("APP_ENV must be development or production, got %q", cfg.AppEnv))
	}
	switch cfg.DB.Driver {
	case database.DriverSQLite:
	case database.DriverMySQL:
		if cfg.DB.DSN == "" {
			errs = append(errs, errors.New("DB_DSN is required when DB_DRIVER is mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", cfg.DB.Driver))
	}
	if cfg.AuthRequired && cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_REQUIRED is true"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}
