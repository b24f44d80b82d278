package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"StockWatch/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr      string `yaml:"addr"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`
	Market struct {
		Source         string `yaml:"source"` // "http" or "mock"
		QuoteBaseURL   string `yaml:"quote_base_url"`
		KlineBaseURL   string `yaml:"kline_base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		HistoryDays    int    `yaml:"history_days"`
	} `yaml:"market"`
	Analysis struct {
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		Model          string `yaml:"model"`
		Source         string `yaml:"source"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"analysis"`
	Favorites struct {
		File       string                `yaml:"file"`
		SQLitePath string                `yaml:"sqlite_path"`
		Defaults   []model.FavoriteEntry `yaml:"defaults"`
	} `yaml:"favorites"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
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
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("MARKET_SOURCE"); v != "" {
		c.Market.Source = v
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		c.Analysis.APIKey = v
	}
	if v := os.Getenv("DEEPSEEK_API_URL"); v != "" {
		c.Analysis.BaseURL = v
	}
	if v := os.Getenv("DEEPSEEK_MODEL"); v != "" {
		c.Analysis.Model = v
	}
	if v := os.Getenv("FAVORITES_FILE"); v != "" {
		c.Favorites.File = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Favorites.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		c.Schedule.DigestCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Tracing.Enabled = b
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3001"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "dist"
	}
	if c.Market.Source == "" {
		c.Market.Source = "http"
	}
	if c.Market.TimeoutSeconds == 0 {
		c.Market.TimeoutSeconds = 10
	}
	if c.Market.HistoryDays == 0 {
		c.Market.HistoryDays = 30
	}
	if c.Analysis.TimeoutSeconds == 0 {
		c.Analysis.TimeoutSeconds = 30
	}
	if c.Favorites.File == "" {
		c.Favorites.File = "data/favorites.json"
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = "0 30 15 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// MarketTimeout is the per-request timeout for vendor market data calls.
func (c *Config) MarketTimeout() time.Duration {
	return time.Duration(c.Market.TimeoutSeconds) * time.Second
}

// AnalysisTimeout bounds the external analysis call.
func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}

// TelegramEnabled reports whether the watchlist digest should run.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Market.Source != "http" && c.Market.Source != "mock" {
		return fmt.Errorf("market.source must be \"http\" or \"mock\", got %q", c.Market.Source)
	}
	if c.Market.TimeoutSeconds < 0 || c.Analysis.TimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.Market.HistoryDays < 0 {
		return fmt.Errorf("market.history_days must be positive")
	}
	for i, f := range c.Favorites.Defaults {
		if f.Code == "" || f.Name == "" {
			return fmt.Errorf("favorites.defaults[%d]: code and name are required", i)
		}
	}
	if c.TelegramEnabled() {
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
		}
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Schedule.DigestCron); err != nil {
			return fmt.Errorf("schedule.digest_cron: %w", err)
		}
	}
	return nil
}
