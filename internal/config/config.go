package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Mailboxes []MailboxConfig `mapstructure:"mailboxes"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// TelegramConfig holds Telegram Bot API configuration
type TelegramConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ScannerConfig holds mailbox scan cycle configuration
type ScannerConfig struct {
	IntervalMinutes       int           `mapstructure:"interval_minutes"`
	LookbackDays          int           `mapstructure:"lookback_days"`
	SenderDomains         []string      `mapstructure:"sender_domains"`
	MaxConcurrentAccounts int           `mapstructure:"max_concurrent_accounts"`
	AccountTimeout        time.Duration `mapstructure:"account_timeout"`
}

// MailboxConfig holds credentials and connection parameters for one mail account
type MailboxConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
}

// Addr returns the host:port dial address for the account
func (m *MailboxConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// A single mailbox can be supplied via environment variables; lists of
	// accounts come from the config file.
	if addr := viper.GetString("mailbox.address"); addr != "" {
		config.Mailboxes = append(config.Mailboxes, MailboxConfig{
			Address:  addr,
			Password: viper.GetString("mailbox.password"),
			Host:     viper.GetString("mailbox.host"),
			Port:     viper.GetInt("mailbox.port"),
		})
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("telegram.api_base", "https://api.telegram.org")
	viper.SetDefault("telegram.timeout", "10s")

	viper.SetDefault("scanner.interval_minutes", 5)
	viper.SetDefault("scanner.lookback_days", 4)
	viper.SetDefault("scanner.sender_domains", []string{"inpost.pl", "inpost.co.uk"})
	viper.SetDefault("scanner.max_concurrent_accounts", 3)
	viper.SetDefault("scanner.account_timeout", "60s")

	viper.SetDefault("mailbox.port", 993)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// Telegram
	viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	viper.BindEnv("telegram.api_base", "TELEGRAM_API_BASE")
	viper.BindEnv("telegram.timeout", "TELEGRAM_TIMEOUT")

	// Scanner
	viper.BindEnv("scanner.interval_minutes", "SCANNER_INTERVAL_MINUTES")
	viper.BindEnv("scanner.lookback_days", "SCANNER_LOOKBACK_DAYS")
	viper.BindEnv("scanner.max_concurrent_accounts", "SCANNER_MAX_CONCURRENT_ACCOUNTS")
	viper.BindEnv("scanner.account_timeout", "SCANNER_ACCOUNT_TIMEOUT")

	// Single mailbox account
	viper.BindEnv("mailbox.address", "MAILBOX_ADDRESS")
	viper.BindEnv("mailbox.password", "MAILBOX_PASSWORD")
	viper.BindEnv("mailbox.host", "MAILBOX_HOST")
	viper.BindEnv("mailbox.port", "MAILBOX_PORT")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}

	if len(c.Mailboxes) == 0 {
		return fmt.Errorf("at least one mailbox account is required")
	}
	for i, m := range c.Mailboxes {
		if m.Address == "" || m.Password == "" || m.Host == "" || m.Port <= 0 {
			return fmt.Errorf("mailbox %d: address, password, host, and port are required", i)
		}
	}

	if c.Scanner.IntervalMinutes <= 0 {
		return fmt.Errorf("scanner interval must be greater than 0")
	}
	if c.Scanner.LookbackDays <= 0 {
		return fmt.Errorf("scanner lookback must be greater than 0")
	}
	if c.Scanner.MaxConcurrentAccounts <= 0 {
		return fmt.Errorf("scanner account concurrency must be greater than 0")
	}
	if len(c.Scanner.SenderDomains) == 0 {
		return fmt.Errorf("at least one sender domain is required")
	}

	return nil
}
