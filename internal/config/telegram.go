package config

import (
	"context"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/warden/pkg/log"
)

type TelegramConfig struct {
	Token       string        `env:"WARDEN_TELEGRAM_TOKEN,required,notEmpty" mask:"true"`
	AllowList   []int64       `env:"WARDEN_ALLOWLIST,required,notEmpty" envSeparator:","`
	ReportTo    int64         `env:"WARDEN_REPORT_TO"`
	PollTimeout time.Duration `env:"WARDEN_POLL_TIMEOUT" envDefault:"10s"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c, err := ParseTelegramConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func ParseTelegramConfig() (*TelegramConfig, error) {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.ReportTo == 0 && len(c.AllowList) > 0 {
		c.ReportTo = c.AllowList[0]
	}
	return c, nil
}

func (c TelegramConfig) IsPrivileged(userID int64) bool {
	return slices.Contains(c.AllowList, userID)
}

func (c TelegramConfig) GetReportTo() int64 {
	return c.ReportTo
}
