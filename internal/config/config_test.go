package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "host=localhost user=test password=test dbname=test port=5432 sslmode=disable")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.OutboundRatePerSec != 25 {
		t.Errorf("OutboundRatePerSec = %d, want 25", cfg.OutboundRatePerSec)
	}
	if cfg.ReminderPollIntervalSec != 0 {
		t.Errorf("ReminderPollIntervalSec = %d, want 0", cfg.ReminderPollIntervalSec)
	}
	if cfg.EmailFrom != "no-reply@studyhub.app" {
		t.Errorf("EmailFrom = %s, want no-reply@studyhub.app", cfg.EmailFrom)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OUTBOUND_RATE_PER_SEC", "5")
	t.Setenv("REMINDER_POLL_INTERVAL_SEC", "300")
	t.Setenv("CHAT_BOT_API_URL", "https://api.telegram.org/bot123/sendMessage")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.OutboundRatePerSec != 5 {
		t.Errorf("OutboundRatePerSec = %d, want 5", cfg.OutboundRatePerSec)
	}
	if cfg.ReminderPollIntervalSec != 300 {
		t.Errorf("ReminderPollIntervalSec = %d, want 300", cfg.ReminderPollIntervalSec)
	}
	if cfg.ChatBotAPIURL != "https://api.telegram.org/bot123/sendMessage" {
		t.Errorf("ChatBotAPIURL = %s", cfg.ChatBotAPIURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=localhost")
	t.Setenv("REDIS_URL", "placeholder")
	os.Unsetenv("REDIS_URL")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing REDIS_URL")
	}
}
