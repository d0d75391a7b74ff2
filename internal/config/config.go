package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`

	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
	EmailFrom      string `env:"EMAIL_FROM,default=no-reply@studyhub.app"`
	EmailFromName  string `env:"EMAIL_FROM_NAME,default=StudyHub"`

	ChatBotAPIURL string `env:"CHAT_BOT_API_URL"`

	// OutboundRatePerSec caps email/chat sends per channel per second.
	OutboundRatePerSec int `env:"OUTBOUND_RATE_PER_SEC,default=25"`

	// ReminderPollIntervalSec enables the periodic reminder sweep when > 0.
	// The pull-triggered check endpoint works either way.
	ReminderPollIntervalSec int `env:"REMINDER_POLL_INTERVAL_SEC,default=0"`

	APIPort  int    `env:"API_PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
