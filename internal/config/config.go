package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings of the portal HTTP service. Database and logger
// settings are parsed by their own packages.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8431"`

	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL"    envDefault:"24h"`
	SessionIssuer string        `env:"SESSION_ISSUER" envDefault:"declic-portal"`
	CookieSecure  bool          `env:"COOKIE_SECURE"`

	DocumentServiceURL   string        `env:"DOCUMENT_SERVICE_URL"`
	DocumentServiceToken string        `env:"DOCUMENT_SERVICE_TOKEN"`
	DocumentTimeout      time.Duration `env:"DOCUMENT_TIMEOUT" envDefault:"30s"`

	BookingURL string `env:"BOOKING_URL"`

	LeadRatePerMinute int  `env:"LEAD_RATE_PER_MINUTE" envDefault:"30"`
	DBAutoMigrate     bool `env:"DB_AUTO_MIGRATE"`
}

// FromEnv parses Config from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 bytes")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.DocumentTimeout <= 0 {
		return errors.New("DOCUMENT_TIMEOUT must be positive")
	}
	return nil
}
