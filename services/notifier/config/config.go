package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultHistoryCount     = 5
	defaultTemplatePath     = "./templates/ui_email_template.html"
	defaultChartDirectory   = "/tmp"
	defaultChartWidth       = 1400
	defaultChartHeight      = 400
	defaultRetentionSeconds = 7 * 24 * 3600
	defaultSMTPPort         = 587
)

// SMTPConfig defines the outgoing mail server
type SMTPConfig struct {
	Host     string `toml:"Host"`
	Port     int    `toml:"Port"`
	Username string `toml:"Username"`
	From     string `toml:"From"`
}

// Config maps to the config.toml file for the notifier service
type Config struct {
	ListenAddress           string     `toml:"ListenAddress"`
	RetentionSeconds        int        `toml:"RetentionSeconds"`
	HistoryCount            int        `toml:"HistoryCount"`
	RequestTimeoutInSeconds uint32     `toml:"RequestTimeoutInSeconds"`
	TemplatePath            string     `toml:"TemplatePath"`
	ChartDirectory          string     `toml:"ChartDirectory"`
	ChartWidth              int        `toml:"ChartWidth"`
	ChartHeight             int        `toml:"ChartHeight"`
	DeliveryEnabled         bool       `toml:"DeliveryEnabled"`
	SMTP                    SMTPConfig `toml:"SMTP"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills the unset values. A zero RequestTimeoutInSeconds is kept as is and means no timeout.
func (cfg *Config) ApplyDefaults() {
	if cfg.HistoryCount <= 0 {
		cfg.HistoryCount = defaultHistoryCount
	}
	if len(cfg.TemplatePath) == 0 {
		cfg.TemplatePath = defaultTemplatePath
	}
	if len(cfg.ChartDirectory) == 0 {
		cfg.ChartDirectory = defaultChartDirectory
	}
	if cfg.ChartWidth <= 0 {
		cfg.ChartWidth = defaultChartWidth
	}
	if cfg.ChartHeight <= 0 {
		cfg.ChartHeight = defaultChartHeight
	}
	if cfg.RetentionSeconds <= 0 {
		cfg.RetentionSeconds = defaultRetentionSeconds
	}
	if cfg.SMTP.Port <= 0 {
		cfg.SMTP.Port = defaultSMTPPort
	}
}
