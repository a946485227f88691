// Package config reads process configuration from the environment, after
// loading any .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/DoyleJ11/lastmanstanding/internal/store"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Addr         string        `env:"LMS_ADDR" envDefault:":8080"`
	TickInterval time.Duration `env:"LMS_TICK_INTERVAL" envDefault:"1s"`
	SettingsPath string        `env:"LMS_SETTINGS_PATH" envDefault:"config.yml"`
	StoreDriver  string        `env:"LMS_STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath   string        `env:"LMS_SQLITE_PATH" envDefault:"data/lms.db"`
	PostgresDSN  string        `env:"LMS_POSTGRES_DSN"`
	AdminToken   string        `env:"LMS_ADMIN_TOKEN"`
	LogLevel     string        `env:"LMS_LOG_LEVEL" envDefault:"info"`
	Dev          bool          `env:"LMS_DEV" envDefault:"false"`
}

// StoreTarget is the connection target for the configured driver.
func (c Config) StoreTarget() string {
	if c.StoreDriver == store.DriverPostgres {
		return c.PostgresDSN
	}
	return c.SQLitePath
}

// Load reads the given .env files, skipping any that do not exist, then
// parses the environment. Variables already set win over .env values.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch {
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: LMS_TICK_INTERVAL must be positive", ErrInvalid)
	case c.StoreDriver != store.DriverSQLite && c.StoreDriver != store.DriverPostgres:
		return fmt.Errorf("%w: %w: %q", ErrInvalid, store.ErrUnknownDriver, c.StoreDriver)
	case c.StoreDriver == store.DriverPostgres && c.PostgresDSN == "":
		return fmt.Errorf("%w: LMS_POSTGRES_DSN is required for postgres", ErrInvalid)
	}
	return nil
}
