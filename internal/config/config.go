// Package config reads runtime configuration from the environment.
package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"

	"strafenkasse-service/internal/domain"
)

// SpondConfig holds the credentials and group selection for the Spond API.
type SpondConfig struct {
	Email    string `env:"SPOND_EMAIL"`
	Password string `env:"SPOND_PASSWORD"`
	GroupID  string `env:"SPOND_GROUP_ID"`
	BaseURL  string `env:"SPOND_BASE_URL"`
	// NoReplyPenalty is the fallback amount when the catalog has no
	// non-response entry. Accepts "5", "5.00" or "5,00".
	NoReplyPenalty domain.Cents `env:"SPOND_NO_REPLY_PENALTY" envDefault:"5.00"`
}

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Port         string `env:"METRICS_PORT" envDefault:"9090"`
	OtlpEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"strafenkasse-service"`
	OtlpInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
}

// Config holds runtime configuration for the server.
type Config struct {
	Port       string `env:"PORT" envDefault:"4000"`
	DBPath     string `env:"DB_PATH" envDefault:"strafenkasse.db"`
	AdminToken string `env:"ADMIN_TOKEN"`
	Provider   string `env:"PROVIDER" envDefault:"fixture"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`
	// SyncInterval is the cadence of the background sync. Zero disables it.
	SyncInterval   time.Duration `env:"SYNC_INTERVAL" envDefault:"1h"`
	SyncWindowDays int           `env:"SYNC_WINDOW_DAYS" envDefault:"14"`
	Spond          SpondConfig
	Metrics        MetricsConfig
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(domain.Cents(0)): parseCents,
		},
	})
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that tags cannot express.
func (c Config) Validate() error {
	if c.SyncInterval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must not be negative")
	}
	if c.SyncWindowDays <= 0 {
		return fmt.Errorf("SYNC_WINDOW_DAYS must be positive")
	}
	if c.Provider == "spond" {
		if c.Spond.Email == "" || c.Spond.Password == "" {
			return fmt.Errorf("SPOND_EMAIL and SPOND_PASSWORD are required for the spond provider")
		}
		if c.Spond.GroupID == "" {
			return fmt.Errorf("SPOND_GROUP_ID is required for the spond provider")
		}
	}
	return nil
}

// SyncWindow returns the lookback window as a duration.
func (c Config) SyncWindow() time.Duration {
	return time.Duration(c.SyncWindowDays) * 24 * time.Hour
}

func parseCents(v string) (any, error) {
	return domain.ParseCents(v)
}
