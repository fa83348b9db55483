package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Mini-app
	WebAppURL string `env:"WEBAPP_URL"`
	Port      int    `env:"PORT" envDefault:"5000"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Marketplace economics
	CommissionRate float64 `env:"COMMISSION_RATE" envDefault:"0.15"`
	MinWithdrawal  float64 `env:"MIN_WITHDRAW" envDefault:"50"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Admin event log channel
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CommissionRate <= 0 || cfg.CommissionRate >= 1 {
		return nil, fmt.Errorf("COMMISSION_RATE must be between 0 and 1, got %v", cfg.CommissionRate)
	}
	if cfg.MinWithdrawal <= 0 {
		return nil, fmt.Errorf("MIN_WITHDRAW must be positive, got %v", cfg.MinWithdrawal)
	}
	return cfg, nil
}

// IsAdmin reports whether the given Telegram account may adjudicate
// submissions and settle withdrawals.
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
