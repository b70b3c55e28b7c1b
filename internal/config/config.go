package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"AssetCompare/internal/logger"
	"AssetCompare/internal/model"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider          string        `yaml:"provider"` // yahoo or rest
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		CacheTTL          time.Duration `yaml:"cache_ttl"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
	} `yaml:"data_source"`
	Directory struct {
		Path string `yaml:"path"`
	} `yaml:"directory"`
	Analysis struct {
		TickerA      string   `yaml:"ticker_a"`
		TickerB      string   `yaml:"ticker_b"`
		LookbackDays int      `yaml:"lookback_days"`
		PriceField   string   `yaml:"price_field"`
		RiskFreeA    *float64 `yaml:"risk_free_a"`
		RiskFreeB    *float64 `yaml:"risk_free_b"`
	} `yaml:"analysis"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log   logger.Config `yaml:"log"`
	Proxy string        `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; a .env file next to the working directory is
// loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	// Environment variable overrides
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("TICKER_DIRECTORY"); v != "" {
		c.Directory.Path = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = logger.Level(v)
	}
	if v := os.Getenv("RISK_FREE_A"); v != "" {
		if rf, err := strconv.ParseFloat(v, 64); err == nil {
			c.Analysis.RiskFreeA = &rf
		}
	}
	if v := os.Getenv("RISK_FREE_B"); v != "" {
		if rf, err := strconv.ParseFloat(v, 64); err == nil {
			c.Analysis.RiskFreeB = &rf
		}
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.CacheTTL == 0 {
		c.DataSource.CacheTTL = 15 * time.Minute
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if c.Directory.Path == "" {
		c.Directory.Path = "configs/ticker_names.json"
	}
	if c.Analysis.LookbackDays == 0 {
		c.Analysis.LookbackDays = 365
	}
	if c.Analysis.PriceField == "" {
		c.Analysis.PriceField = string(model.FieldOpen)
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 22 * * 1-5"
	}
	c.Log = c.Log.WithDefaults()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.RequestsPerSecond < 0 {
		return fmt.Errorf("data_source.requests_per_second must not be negative")
	}
	if c.Analysis.LookbackDays < 0 {
		return fmt.Errorf("analysis.lookback_days must be positive")
	}
	if _, err := model.ParsePriceField(c.Analysis.PriceField); err != nil {
		return fmt.Errorf("analysis.price_field: %w", err)
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron: %w", err)
	}
	return nil
}

// ValidateNotifier checks the Telegram settings needed by the watch mode.
func (c *Config) ValidateNotifier() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Analysis.TickerA == "" || c.Analysis.TickerB == "" {
		return fmt.Errorf("analysis.ticker_a and analysis.ticker_b are required")
	}
	return nil
}
