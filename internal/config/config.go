// Package config reads process configuration from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers understood by the database package.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// DevOrigin is always allowed by the CORS policy.
const DevOrigin = "http://localhost:3000"

type Config struct {
	Port            int
	Env             string
	ClientURL       string
	StaticDir       string
	StoreDriver     string
	MongoURL        string
	MongoDatabase   string
	DatabaseURL     string
	MigrationsPath  string
	LogLevel        string
	RateLimit       float64
	RateBurst       int
	ShutdownTimeout time.Duration
	// TrustProxy makes the server take the client address from
	// X-Forwarded-For / X-Real-IP. Only enable it behind a proxy that
	// overwrites those headers.
	TrustProxy bool
}

// IsDevelopment reports whether the process runs with APP_ENV=development.
// Development relaxes CORS to any origin, so it must be chosen explicitly.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// AllowedOrigins returns the CORS allow-list: the local dev origin plus
// CLIENT_URL when it is set.
func (c Config) AllowedOrigins() []string {
	origins := []string{DevOrigin}
	if c.ClientURL != "" {
		origins = append(origins, c.ClientURL)
	}
	return origins
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("CLIENT_URL", "")
	v.SetDefault("STATIC_DIR", "public")
	v.SetDefault("STORE_DRIVER", DriverMemory)
	v.SetDefault("MONGO_URL", "")
	v.SetDefault("MONGO_DATABASE", "nasa")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MIGRATIONS_PATH", "file://internal/database/migrations")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_LIMIT", 10)
	v.SetDefault("RATE_BURST", 20)
	v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)
	v.SetDefault("TRUST_PROXY", false)
	return v
}

// Load reads envFiles (missing files are ignored, existing variables win)
// and then the environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := newViper()
	cfg := Config{
		Port:            v.GetInt("PORT"),
		Env:             v.GetString("APP_ENV"),
		ClientURL:       strings.TrimRight(v.GetString("CLIENT_URL"), "/"),
		StaticDir:       v.GetString("STATIC_DIR"),
		StoreDriver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURL:        v.GetString("MONGO_URL"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		RateLimit:       v.GetFloat64("RATE_LIMIT"),
		RateBurst:       v.GetInt("RATE_BURST"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		TrustProxy:      v.GetBool("TRUST_PROXY"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverMongo:
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required when STORE_DRIVER=mongo")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("RATE_LIMIT and RATE_BURST must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
