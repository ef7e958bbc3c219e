package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"` // "yahoo", "rest" or "mock"
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Symbol   string `yaml:"symbol"`
	} `yaml:"data_source"`
	Schedule struct {
		TickInterval string `yaml:"tick_interval"`
	} `yaml:"schedule"`
	Strategy struct {
		Preset           string   `yaml:"preset"`
		LevelTolerance   *float64 `yaml:"level_tolerance"`
		RSIBuyMax        *float64 `yaml:"rsi_buy_max"`
		RSISellMin       *float64 `yaml:"rsi_sell_min"`
		MultiTFVeto      *bool    `yaml:"multi_tf_veto"`
		ATRMultiplier    *float64 `yaml:"atr_multiplier"`
		RewardMultiplier *float64 `yaml:"reward_multiplier"`
	} `yaml:"strategy"`
	Cooldown struct {
		Hours         float64 `yaml:"hours"`
		Store         string  `yaml:"store"` // "file", "sqlite", "redis" or "memory"
		StateFile     string  `yaml:"state_file"`
		RedisAddr     string  `yaml:"redis_addr"`
		RedisPassword string  `yaml:"redis_password"`
		RedisDB       int     `yaml:"redis_db"`
		RedisKey      string  `yaml:"redis_key"`
	} `yaml:"cooldown"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Sentiment struct {
		Enabled bool   `yaml:"enabled"`
		COTURL  string `yaml:"cot_url"`
	} `yaml:"sentiment"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	// Indicators carries indicator overrides such as RSI_PERIOD, read through MapStore.
	Indicators map[string]string `yaml:"indicators"`
	Proxy      string            `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file, then applies environment variable overrides.
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

	// .env is optional
	_ = godotenv.Load()

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		cfg.Schedule.TickInterval = v
	}
	if v := os.Getenv("STRATEGY_PRESET"); v != "" {
		cfg.Strategy.Preset = v
	}
	if v := os.Getenv("COOLDOWN_HOURS"); v != "" {
		if h, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Cooldown.Hours = h
		}
	}
	if v := os.Getenv("COOLDOWN_STORE"); v != "" {
		cfg.Cooldown.Store = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cooldown.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cooldown.RedisPassword = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "XAU/USD"
	}
	if c.Schedule.TickInterval == "" {
		c.Schedule.TickInterval = "@every 20s"
	}
	if c.Strategy.Preset == "" {
		c.Strategy.Preset = "three-stage"
	}
	if c.Cooldown.Hours == 0 {
		c.Cooldown.Hours = 4
	}
	if c.Cooldown.Store == "" {
		c.Cooldown.Store = "file"
	}
	if c.Cooldown.StateFile == "" {
		c.Cooldown.StateFile = "data/trading_state.json"
	}
	if c.Cooldown.RedisAddr == "" {
		c.Cooldown.RedisAddr = "localhost:6379"
	}
	if c.Cooldown.RedisKey == "" {
		c.Cooldown.RedisKey = "goldsentinel:cooldown"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/goldsentinel.db"
	}
	if c.Sentiment.COTURL == "" {
		c.Sentiment.COTURL = "https://publicreporting.cftc.gov/resource/72hh-3qpy.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all fields required by the live bot are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the rest provider")
	}
	if c.Cooldown.Hours < 0 {
		return fmt.Errorf("cooldown.hours must not be negative")
	}
	switch c.Cooldown.Store {
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("cooldown.store %q is not supported", c.Cooldown.Store)
	}
	return nil
}
