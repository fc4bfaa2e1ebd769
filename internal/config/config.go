package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Backend    BackendConfig    `yaml:"backend"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Fares      FaresConfig      `yaml:"fares"`
	Exports    ExportConfig     `yaml:"exports"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Google     GoogleConfig     `yaml:"google"`
	Bot        BotConfig        `yaml:"bot"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

// BackendConfig points at the BoardEasy REST backend.
type BackendConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	CacheTTLSec    int     `yaml:"cache_ttl_seconds"`
}

type DatabaseConfig struct {
	// Path is the sqlite file holding per-chat credentials.
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// FaresConfig holds client-side fare policy. ServiceFee is in paise; coupons
// map code to a whole discount percent.
type FaresConfig struct {
	ServiceFee int64          `yaml:"service_fee"`
	Coupons    map[string]int `yaml:"coupons"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type GoogleConfig struct {
	Enabled              bool   `yaml:"enabled"`
	CredentialsFile      string `yaml:"credentials_file"`
	BookingSpreadSheetID string `yaml:"bookings_spreadsheet_id"`
}

type BotConfig struct {
	PaginationSize    int `yaml:"pagination_size"`
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
	DraftTTLSeconds   int `yaml:"draft_ttl_seconds"`
}

// Load reads the YAML config with environment expansion. A .env file next to
// the binary is honored when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expanded, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Backend.BaseURL == "" {
		return errors.New("backend base_url is required")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend base_url %q is not an absolute URL", c.Backend.BaseURL)
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	// An invalid page size must never reach the view engine.
	if c.Bot.PaginationSize <= 0 {
		return errors.New("bot pagination_size must be positive")
	}

	for code, pct := range c.Fares.Coupons {
		if strings.TrimSpace(code) == "" {
			return errors.New("coupon code must not be empty")
		}
		if pct <= 0 || pct > 100 {
			return fmt.Errorf("coupon %s: discount percent %d out of range", code, pct)
		}
	}

	if c.Google.Enabled {
		if c.Google.CredentialsFile == "" || c.Google.BookingSpreadSheetID == "" {
			return errors.New("google sync requires credentials_file and bookings_spreadsheet_id")
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "boardeasy"
	}

	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 10
	}
	if c.Backend.RateLimitRPS <= 0 {
		c.Backend.RateLimitRPS = 10
	}
	if c.Backend.RateLimitBurst <= 0 {
		c.Backend.RateLimitBurst = 5
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Bot.PaginationSize == 0 {
		c.Bot.PaginationSize = defaultPaginationSize
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = defaultRateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = defaultRateLimitWindow
	}
	if c.Bot.DraftTTLSeconds == 0 {
		c.Bot.DraftTTLSeconds = defaultDraftTTLSeconds
	}

	if c.Fares.ServiceFee == 0 {
		c.Fares.ServiceFee = defaultServiceFee
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

const (
	defaultPaginationSize    = 8
	defaultRateLimitMessages = 20
	defaultRateLimitWindow   = 60
	defaultDraftTTLSeconds   = 24 * 60 * 60

	// defaultServiceFee is 25.00 in paise.
	defaultServiceFee = 2500
)
