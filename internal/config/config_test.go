package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "relay",
			Password: "secret",
			DBName:   "parcels",
		},
		Telegram: TelegramConfig{
			BotToken: "123456:abcdef",
			APIBase:  "https://api.telegram.org",
			Timeout:  10 * time.Second,
		},
		Scanner: ScannerConfig{
			IntervalMinutes:       5,
			LookbackDays:          4,
			SenderDomains:         []string{"inpost.pl", "inpost.co.uk"},
			MaxConcurrentAccounts: 3,
			AccountTimeout:        60 * time.Second,
		},
		Mailboxes: []MailboxConfig{
			{Address: "me@example.com", Password: "pw", Host: "imap.example.com", Port: 993},
		},
	}
}

func TestValidateValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing server port", func(c *Config) { c.Server.Port = "" }},
		{"missing database host", func(c *Config) { c.Database.Host = "" }},
		{"missing database user", func(c *Config) { c.Database.User = "" }},
		{"missing bot token", func(c *Config) { c.Telegram.BotToken = "" }},
		{"no mailboxes", func(c *Config) { c.Mailboxes = nil }},
		{"mailbox without password", func(c *Config) { c.Mailboxes[0].Password = "" }},
		{"mailbox without port", func(c *Config) { c.Mailboxes[0].Port = 0 }},
		{"zero scan interval", func(c *Config) { c.Scanner.IntervalMinutes = 0 }},
		{"zero lookback", func(c *Config) { c.Scanner.LookbackDays = 0 }},
		{"zero account concurrency", func(c *Config) { c.Scanner.MaxConcurrentAccounts = 0 }},
		{"no sender domains", func(c *Config) { c.Scanner.SenderDomains = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t,
		"relay:secret@tcp(localhost:3306)/parcels?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.GetDSN())
}

func TestMailboxAddr(t *testing.T) {
	m := MailboxConfig{Host: "imap.example.com", Port: 993}
	assert.Equal(t, "imap.example.com:993", m.Addr())
}
