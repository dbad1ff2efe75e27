// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Client   ClientConfig
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
}

// ClientConfig holds the CLI settings.
type ClientConfig struct {
	APIURL    string        `envconfig:"INVOICEDESK_API_URL" default:"http://localhost:8080/api/"`
	State     string        `envconfig:"INVOICEDESK_STATE"`
	RedisAddr string        `envconfig:"INVOICEDESK_REDIS_ADDR"`
	Timeout   time.Duration `envconfig:"INVOICEDESK_TIMEOUT" default:"30s"`
}

// ServerConfig holds the development backend settings.
type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	JWTSecret    string        `envconfig:"JWT_SECRET" default:"devsessionsecret"`
	TokenTTL     time.Duration `envconfig:"JWT_TTL" default:"24h"`
	Migrations   bool          `envconfig:"MIGRATIONS" default:"true"`
}

// DatabaseConfig selects sqlite (a file path) or PostgreSQL.
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"invoicedesk.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"invoices"`
	Password string `envconfig:"DB_PASSWORD" default:"invoices123"`
	DBName   string `envconfig:"DB_NAME" default:"invoices"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Format string `envconfig:"LOG_FORMAT" default:"text"`
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
}

// DSN returns the connection string for the configured driver: the file
// path for sqlite, key=value form for PostgreSQL.
func (d DatabaseConfig) DSN() string {
	if d.Driver != "postgres" {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// StatePath returns the JSON state file, ~/.invoicedesk/state.json unless
// INVOICEDESK_STATE is set.
func (c ClientConfig) StatePath() string {
	if c.State != "" {
		return c.State
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".invoicedesk", "state.json")
	}
	return filepath.Join(home, ".invoicedesk", "state.json")
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	var cfg Config
	for name, section := range map[string]any{
		"client":   &cfg.Client,
		"server":   &cfg.Server,
		"database": &cfg.Database,
		"log":      &cfg.Log,
	} {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("config %s: %w", name, err)
		}
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("config database: unknown DB_DRIVER %q", cfg.Database.Driver)
	}
	return &cfg, nil
}
