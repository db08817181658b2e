package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	AppEnv  string
	AppPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	// RedisAddr enables the distributed callback lock when set.
	RedisAddr string

	// GatewayConfigFile loads gateway configurations from YAML instead of Postgres.
	GatewayConfigFile string

	AdminJWTSecret string
	// PublicBaseURL is the externally reachable origin providers call back.
	PublicBaseURL string
	XenditBaseURL string
}

// CallbackURL returns the callback endpoint a provider must be given for alias.
func (c *Config) CallbackURL(alias string) string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/payment-gateway/" + url.PathEscape(alias) + "/callback"
}

// UseDatabase reports whether a Postgres connection is configured.
func (c *Config) UseDatabase() bool {
	return c.DBHost != ""
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	if c.AppPort == "" {
		problems = append(problems, "APP_PORT is required")
	}
	if c.UseDatabase() && (c.DBUser == "" || c.DBName == "") {
		problems = append(problems, "DB_USER and DB_NAME are required when DB_HOST is set")
	}
	if !c.UseDatabase() && c.GatewayConfigFile == "" {
		problems = append(problems, "GATEWAY_CONFIG_FILE is required without a database")
	}
	if c.IsProduction() && len(c.AdminJWTSecret) < 32 {
		problems = append(problems, "ADMIN_JWT_SECRET must be at least 32 bytes in production")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LoadConfig reads the environment, after an optional .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:            getenv("APP_ENV", "development"),
		AppPort:           getenv("APP_PORT", "8080"),
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		GatewayConfigFile: os.Getenv("GATEWAY_CONFIG_FILE"),
		AdminJWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
		PublicBaseURL:     getenv("PUBLIC_BASE_URL", "http://localhost:8080"),
		XenditBaseURL:     os.Getenv("XENDIT_BASE_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
