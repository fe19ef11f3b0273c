package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It is refused in production.
const DefaultJWTSecret = "default_jwt_secret"

// Config holds all configuration for the application
type Config struct {
	Port                 string `mapstructure:"PORT"`
	Origin               string `mapstructure:"ORIGIN"`
	Environment          string `mapstructure:"ENV"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	JWTExpirationMinutes int    `mapstructure:"JWT_EXPIRATION_MINUTES"`
	LogLevel             string `mapstructure:"LOG_LEVEL"`
	Timezone             string `mapstructure:"TIMEZONE"`
	SentryDSN            string `mapstructure:"SENTRY_DSN"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUsername string `mapstructure:"DB_USERNAME"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	// DBDSN overrides the DSN built from the individual DB_* settings.
	DBDSN string `mapstructure:"DB_DSN"`

	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`
}

var keys = []string{
	"PORT", "ORIGIN", "ENV", "JWT_SECRET", "JWT_EXPIRATION_MINUTES", "LOG_LEVEL",
	"TIMEZONE", "SENTRY_DSN", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USERNAME",
	"DB_PASSWORD", "DB_NAME", "DB_DSN", "MONGODB_URI", "MONGODB_DATABASE",
}

// Load reads configuration from the environment. A .env file, if any, must
// already have been loaded into the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("ORIGIN", "http://localhost:3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION_MINUTES", 24*60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USERNAME", "root")
	v.SetDefault("DB_NAME", "clinic")
	v.SetDefault("MONGODB_DATABASE", "clinic")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.JWTExpirationMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be positive, got %d", c.JWTExpirationMinutes)
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be \"mysql\", \"postgres\", or \"sqlite\", got %q", c.DBDriver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone calendar days and months are computed in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// JWTExpiration returns the lifetime of issued access tokens.
func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationMinutes) * time.Minute
}

// DatabaseDSN returns DB_DSN when set, otherwise a DSN for DB_DRIVER built from
// the individual settings. Stored times are always UTC.
func (c *Config) DatabaseDSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.portOr("5432"), c.DBUsername, c.DBPassword, c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUsername, c.DBPassword, c.DBHost, c.portOr("3306"), c.DBName)
	}
}

func (c *Config) portOr(def string) string {
	if c.DBPort == "" {
		return def
	}
	return c.DBPort
}
