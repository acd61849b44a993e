package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/warden/pkg/log"
)

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	RuntimePath string `env:"WARDEN_RUNTIME_PATH"`
	Store       string `env:"WARDEN_STORE" envDefault:"json"`

	// Local midnight is computed in this fixed offset, not the host zone.
	UTCOffsetHours int    `env:"WARDEN_UTC_OFFSET" envDefault:"3"`
	DailyCron      string `env:"WARDEN_DAILY_CRON" envDefault:"0 0 * * *"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.RuntimePath == "" {
		c.RuntimePath = GetRuntimePath()
	}
	if c.Store != StoreJSON && c.Store != StoreSQLite {
		return nil, fmt.Errorf("unknown store backend %q", c.Store)
	}
	if c.UTCOffsetHours < -12 || c.UTCOffsetHours > 14 {
		return nil, fmt.Errorf("utc offset %d out of range", c.UTCOffsetHours)
	}
	return c, nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "warden.db")
}

func (c AppConfig) GetStore() string {
	return c.Store
}

func (c AppConfig) GetDailyCron() string {
	return c.DailyCron
}

// Location is the fixed zone used for day boundaries and chart labels.
func (c AppConfig) Location() *time.Location {
	return FixedZone(c.UTCOffsetHours)
}

func FixedZone(hours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*60*60)
}
